package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/mailcheck/internal/model"
)

// SQLiteIndex implements the Index interface using a local SQLite database.
type SQLiteIndex struct {
	db *sqlx.DB
}

// NewSQLiteIndex opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteIndex(dbPath string) (*SQLiteIndex, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteIndex{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteIndex) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// RecordMessage inserts or replaces the entry for a stored message.
func (s *SQLiteIndex) RecordMessage(ctx context.Context, rec model.MessageRecord) error {
	if rec.StoredAt.IsZero() {
		rec.StoredAt = time.Now()
	}
	rec.StoredAt = rec.StoredAt.UTC()
	rec.Date = rec.Date.UTC()

	const query = `
		INSERT OR REPLACE INTO messages (
			account, address, folder, uid, path,
			subject, from_addr, message_id, date, size, stored_at
		) VALUES (
			:account, :address, :folder, :uid, :path,
			:subject, :from_addr, :message_id, :date, :size, :stored_at
		)`

	if _, err := s.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("recording message %s: %w", rec.Address, err)
	}
	return nil
}

// RecordCheck inserts a check run, assigning an ID when it has none.
func (s *SQLiteIndex) RecordCheck(ctx context.Context, run model.CheckRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()

	const query = `
		INSERT INTO checks (
			id, account, folder, started_at, finished_at,
			unseen, stored, skipped, failed
		) VALUES (
			:id, :account, :folder, :started_at, :finished_at,
			:unseen, :stored, :skipped, :failed
		)`

	if _, err := s.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("recording check %s: %w", run.ID, err)
	}
	return nil
}

// GetMessages returns the indexed messages of one folder, newest first.
func (s *SQLiteIndex) GetMessages(
	ctx context.Context, account, folder string,
) ([]model.MessageRecord, error) {
	var recs []model.MessageRecord
	err := s.db.SelectContext(ctx, &recs, `
		SELECT account, address, folder, uid, path, subject, from_addr,
			message_id, date, size, stored_at
		FROM messages
		WHERE account = ? AND folder = ?
		ORDER BY stored_at DESC, uid DESC`,
		account, folder,
	)
	if err != nil {
		return nil, fmt.Errorf("querying messages for %s/%s: %w", account, folder, err)
	}
	return recs, nil
}

// GetChecks returns recorded check runs, most recent first.
func (s *SQLiteIndex) GetChecks(
	ctx context.Context, filter CheckFilter,
) ([]model.CheckRun, error) {
	var conditions []string
	var args []interface{}

	if filter.Account != nil {
		conditions = append(conditions, "account = ?")
		args = append(args, *filter.Account)
	}
	if filter.Folder != nil {
		conditions = append(conditions, "folder = ?")
		args = append(args, *filter.Folder)
	}

	query := `SELECT id, account, folder, started_at, finished_at,
		unseen, stored, skipped, failed FROM checks`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY started_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var runs []model.CheckRun
	if err := s.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, fmt.Errorf("querying checks: %w", err)
	}
	return runs, nil
}
