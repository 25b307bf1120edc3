package store

import (
	"bytes"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/mailcheck/internal/model"
)

// NewMessageRecord builds the index entry for msg, filling in whatever
// headers parse. Malformed headers leave the fields empty.
func NewMessageRecord(account string, msg *model.StoredMessage) model.MessageRecord {
	rec := model.MessageRecord{
		Account:  account,
		Address:  msg.Address,
		Folder:   msg.Folder,
		UID:      msg.UID,
		Path:     msg.Path,
		Size:     int64(len(msg.Raw)),
		StoredAt: time.Now(),
	}

	mr, err := mail.CreateReader(bytes.NewReader(msg.Raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return rec
	}
	defer mr.Close()

	h := mr.Header
	rec.Subject, _ = h.Subject()
	rec.MessageID, _ = h.MessageID()
	rec.Date, _ = h.Date()

	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		rec.From = from[0].Address
	}

	return rec
}
