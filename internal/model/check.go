package model

import "time"

// CheckRun summarizes one invocation of a mailbox check.
type CheckRun struct {
	// ID is a random UUID assigned when the check starts.
	ID string `db:"id" json:"id"`

	Account string `db:"account" json:"account"`
	Folder  string `db:"folder" json:"folder"`

	StartedAt  time.Time `db:"started_at" json:"started_at"`
	FinishedAt time.Time `db:"finished_at" json:"finished_at"`

	// Unseen is the number of unseen UIDs the server listed.
	Unseen int `db:"unseen" json:"unseen"`

	// Stored counts newly written files; Skipped counts files already on disk.
	Stored  int `db:"stored" json:"stored"`
	Skipped int `db:"skipped" json:"skipped"`

	// Failed counts messages whose fetch or store failed.
	Failed int `db:"failed" json:"failed"`
}
