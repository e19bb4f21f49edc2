package journal

// Schema creates the run journal tables. Idempotent; dbopen applies it
// on every open.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	records     INTEGER NOT NULL DEFAULT 0,
	failures    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS records (
	id            TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	listing_title TEXT NOT NULL,
	outcome       TEXT NOT NULL,
	failed_checks TEXT NOT NULL DEFAULT '[]',
	attempts      INTEGER NOT NULL DEFAULT 0,
	stability     INTEGER NOT NULL DEFAULT 0,
	duration_ms   INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id);
`
