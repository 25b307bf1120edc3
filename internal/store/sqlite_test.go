package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailcheck/internal/model"
)

func newTestIndex(t *testing.T) *SQLiteIndex {
	t.Helper()
	idx, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, idx.Close())
	})
	return idx
}

func TestIndexRecordMessage(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	msg := &model.StoredMessage{
		Address: Address("inbox", 5),
		Path:    "/data/me@example.com/inbox/x.eml",
		Folder:  "inbox",
		UID:     5,
		Raw: []byte("From: Alice <alice@example.com>\r\n" +
			"Subject: =?utf-8?q?caf=C3=A9?=\r\n" +
			"Message-ID: <abc@example.com>\r\n" +
			"Date: Mon, 02 Jan 2006 15:04:05 +0000\r\n" +
			"\r\nhello\r\n"),
	}
	rec := NewMessageRecord(testAccount, msg)
	assert.Equal(t, "café", rec.Subject)
	assert.Equal(t, "alice@example.com", rec.From)
	assert.Equal(t, "abc@example.com", rec.MessageID)
	assert.Equal(t, int64(len(msg.Raw)), rec.Size)

	require.NoError(t, idx.RecordMessage(ctx, rec))
	// Recording again replaces rather than duplicates.
	require.NoError(t, idx.RecordMessage(ctx, rec))

	recs, err := idx.GetMessages(ctx, testAccount, "inbox")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, msg.Address, recs[0].Address)
	assert.Equal(t, uint32(5), recs[0].UID)
	assert.Equal(t, "café", recs[0].Subject)
	assert.True(t, recs[0].Date.Equal(time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)))

	other, err := idx.GetMessages(ctx, testAccount, "Archive")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestNewMessageRecordMalformed(t *testing.T) {
	msg := &model.StoredMessage{Address: "a", Folder: "inbox", UID: 1, Raw: []byte("not a message")}
	rec := NewMessageRecord(testAccount, msg)
	assert.Equal(t, "a", rec.Address)
	assert.Empty(t, rec.Subject)
	assert.Empty(t, rec.From)
}

func TestIndexRecordCheck(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	start := time.Now().Add(-time.Minute)
	require.NoError(t, idx.RecordCheck(ctx, model.CheckRun{
		Account: testAccount, Folder: "inbox",
		StartedAt: start, FinishedAt: start.Add(time.Second),
		Unseen: 2, Stored: 1, Failed: 1,
	}))
	require.NoError(t, idx.RecordCheck(ctx, model.CheckRun{
		ID: "fixed", Account: testAccount, Folder: "Archive",
		StartedAt: start.Add(time.Second), FinishedAt: start.Add(2 * time.Second),
		Unseen: 3, Skipped: 3,
	}))

	all, err := idx.GetChecks(ctx, CheckFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "fixed", all[0].ID)
	assert.NotEmpty(t, all[1].ID)
	assert.Equal(t, 2, all[1].Unseen)
	assert.Equal(t, 1, all[1].Failed)

	folder := "inbox"
	inbox, err := idx.GetChecks(ctx, CheckFilter{Folder: &folder, Limit: 10})
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, 1, inbox[0].Stored)
}

func TestIndexReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	ctx := context.Background()

	idx, err := NewSQLiteIndex(path)
	require.NoError(t, err)
	require.NoError(t, idx.RecordCheck(ctx, model.CheckRun{
		Account: testAccount, Folder: "inbox",
		StartedAt: time.Now(), FinishedAt: time.Now(),
	}))
	require.NoError(t, idx.Close())

	idx, err = NewSQLiteIndex(path)
	require.NoError(t, err)
	defer idx.Close()

	runs, err := idx.GetChecks(ctx, CheckFilter{})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestMigrationsCreateSchema(t *testing.T) {
	idx := newTestIndex(t)

	var version int
	require.NoError(t, idx.db.Get(&version, "SELECT MAX(version) FROM schema_version"))
	assert.Equal(t, len(migrations), version)

	var names []string
	require.NoError(t, idx.db.Select(&names,
		"SELECT name FROM sqlite_master WHERE type='index' AND name LIKE 'idx_%' ORDER BY name"))
	assert.Equal(t, []string{
		"idx_checks_started",
		"idx_messages_folder",
		"idx_messages_message_id",
	}, names)
}
