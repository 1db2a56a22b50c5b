package calendars

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of SQLite schema migrations.
// Empty strings stand for null references so rows scan straight into the
// domain structs.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS calendars (
	id                  TEXT PRIMARY KEY,
	owner_id            TEXT NOT NULL,
	title               TEXT NOT NULL DEFAULT '',
	start_date          TEXT NOT NULL,
	end_date            TEXT NOT NULL,
	is_publicly_visible INTEGER NOT NULL DEFAULT 0,
	is_read_only        INTEGER NOT NULL DEFAULT 0,
	notes               TEXT NOT NULL DEFAULT '',
	created_at          DATETIME NOT NULL,
	updated_at          DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id          TEXT PRIMARY KEY,
	calendar_id TEXT NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
	owner_id    TEXT NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	color       TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS days (
	id               TEXT PRIMARY KEY,
	calendar_id      TEXT NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
	owner_id         TEXT NOT NULL,
	date             TEXT NOT NULL,
	category_id      TEXT NOT NULL DEFAULT '',
	half_category_id TEXT NOT NULL DEFAULT '',
	icon             TEXT NOT NULL DEFAULT '',
	note             TEXT NOT NULL DEFAULT '',
	UNIQUE (calendar_id, date)
);

CREATE INDEX IF NOT EXISTS idx_calendars_owner ON calendars(owner_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_categories_calendar ON categories(calendar_id, created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
