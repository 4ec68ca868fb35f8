// Package store persists discovered profiles, the browser session blob,
// the activity log, and daily counters in a single SQLite database.
package store

import "database/sql"

// Schema is the complete beewatch schema.
const Schema = `
-- Discovered profiles, keyed by the source-assigned identifier
CREATE TABLE IF NOT EXISTS profiles (
    id                  TEXT PRIMARY KEY,
    name                TEXT NOT NULL,
    display_name        TEXT NOT NULL,
    age                 INTEGER NOT NULL DEFAULT 0,
    has_voted           INTEGER NOT NULL DEFAULT 0,
    photo               TEXT,
    interests           TEXT NOT NULL DEFAULT '[]',
    education           TEXT NOT NULL DEFAULT '',
    height              TEXT NOT NULL DEFAULT '',
    smoking             TEXT NOT NULL DEFAULT '',
    drinking            TEXT NOT NULL DEFAULT '',
    exercise            TEXT NOT NULL DEFAULT '',
    pets                TEXT NOT NULL DEFAULT '',
    politics            TEXT NOT NULL DEFAULT '',
    religion            TEXT NOT NULL DEFAULT '',
    zodiac              TEXT NOT NULL DEFAULT '',
    dating_intentions   TEXT NOT NULL DEFAULT '',
    city                TEXT NOT NULL DEFAULT '',
    country             TEXT NOT NULL DEFAULT '',
    distance_short      TEXT NOT NULL DEFAULT '',
    online_status       INTEGER NOT NULL DEFAULT 0,
    is_verified         INTEGER NOT NULL DEFAULT 0,
    instagram_connected INTEGER NOT NULL DEFAULT 0,
    spotify_track       TEXT NOT NULL DEFAULT '',
    first_seen          INTEGER NOT NULL,
    last_seen           INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_profiles_seen ON profiles(last_seen DESC);
CREATE INDEX IF NOT EXISTS idx_profiles_voted ON profiles(has_voted, last_seen DESC);

-- Browser session blob (cookies), single row, most recent wins
CREATE TABLE IF NOT EXISTS session (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    cookies    TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Append-only activity log
CREATE TABLE IF NOT EXISTS activity_log (
    id           TEXT PRIMARY KEY,
    timestamp    INTEGER NOT NULL,
    action_type  TEXT NOT NULL,
    profile_id   TEXT,
    profile_name TEXT,
    details      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_activity_time ON activity_log(timestamp DESC);

-- Per-day counters, additive upsert
CREATE TABLE IF NOT EXISTS daily_stats (
    date           TEXT PRIMARY KEY,
    likes_received INTEGER NOT NULL DEFAULT 0,
    matches        INTEGER NOT NULL DEFAULT 0,
    autolikes      INTEGER NOT NULL DEFAULT 0
);
`

// ApplySchema creates all tables and indexes on the given database.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
