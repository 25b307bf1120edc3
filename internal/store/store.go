package store

import (
	"context"

	"github.com/nhle/mailcheck/internal/model"
)

// MessageStore persists fetched messages, skipping ones already stored.
type MessageStore interface {
	Store(account, folder string, uid uint32, raw []byte) (*model.StoredMessage, error)
}

// Index records what each check stored. It is informational: deduplication
// never consults it.
type Index interface {
	RecordMessage(ctx context.Context, rec model.MessageRecord) error
	RecordCheck(ctx context.Context, run model.CheckRun) error
}

// CheckFilter controls which check runs GetChecks returns.
type CheckFilter struct {
	Account *string
	Folder  *string
	Limit   int
}
