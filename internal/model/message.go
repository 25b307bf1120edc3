package model

import "time"

// StoredMessage is a fetched message as it sits on disk.
type StoredMessage struct {
	// Address is the 40-character hex content address derived from the
	// folder and UID.
	Address string `json:"address"`

	// Path is the absolute path of the .eml file.
	Path string `json:"path"`

	// Folder is the mailbox the message was fetched from.
	Folder string `json:"folder"`

	// UID is the server-assigned identifier within Folder.
	UID uint32 `json:"uid"`

	// Raw holds the complete RFC 5322 message as fetched.
	Raw []byte `json:"-"`

	// Written is false when the file already existed and the write was
	// skipped.
	Written bool `json:"written"`
}

// MessageRecord is the index entry for a stored message.
type MessageRecord struct {
	Account   string    `db:"account" json:"account"`
	Address   string    `db:"address" json:"address"`
	Folder    string    `db:"folder" json:"folder"`
	UID       uint32    `db:"uid" json:"uid"`
	Path      string    `db:"path" json:"path"`
	Subject   string    `db:"subject" json:"subject"`
	From      string    `db:"from_addr" json:"from"`
	MessageID string    `db:"message_id" json:"message_id"`
	Date      time.Time `db:"date" json:"date"`
	Size      int64     `db:"size" json:"size"`
	StoredAt  time.Time `db:"stored_at" json:"stored_at"`
}
