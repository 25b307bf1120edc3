package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	account    TEXT NOT NULL,
	address    TEXT NOT NULL,
	folder     TEXT NOT NULL,
	uid        INTEGER NOT NULL,
	path       TEXT NOT NULL,
	subject    TEXT NOT NULL DEFAULT '',
	from_addr  TEXT NOT NULL DEFAULT '',
	message_id TEXT NOT NULL DEFAULT '',
	date       DATETIME,
	size       INTEGER NOT NULL DEFAULT 0,
	stored_at  DATETIME NOT NULL,
	PRIMARY KEY (account, address)
);

CREATE TABLE IF NOT EXISTS checks (
	id          TEXT PRIMARY KEY,
	account     TEXT NOT NULL,
	folder      TEXT NOT NULL,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	unseen      INTEGER NOT NULL DEFAULT 0,
	stored      INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_messages_folder ON messages(account, folder);
CREATE INDEX IF NOT EXISTS idx_messages_message_id ON messages(message_id);
CREATE INDEX IF NOT EXISTS idx_checks_started ON checks(started_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
