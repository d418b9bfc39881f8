package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS analyses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source TEXT,
    raw_text TEXT NOT NULL,
    kind TEXT NOT NULL CHECK(kind IN ('extracted', 'fallback')),
    species TEXT,
    confidence INTEGER,
    characteristics TEXT,
    sections TEXT,
    clean_content TEXT NOT NULL DEFAULT '',
    validation_score INTEGER NOT NULL DEFAULT 0,
    is_valid INTEGER NOT NULL DEFAULT 0,
    quality TEXT NOT NULL,
    issues TEXT,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS samples (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    label TEXT,
    eye INTEGER NOT NULL CHECK(eye BETWEEN 1 AND 9),
    gill INTEGER NOT NULL CHECK(gill BETWEEN 1 AND 9),
    slime INTEGER NOT NULL CHECK(slime BETWEEN 1 AND 9),
    flesh INTEGER NOT NULL CHECK(flesh BETWEEN 1 AND 9),
    odor INTEGER NOT NULL CHECK(odor BETWEEN 1 AND 9),
    texture INTEGER NOT NULL CHECK(texture BETWEEN 1 AND 9),
    score REAL NOT NULL,
    category TEXT NOT NULL,
    created_at TEXT DEFAULT (datetime('now')),
    updated_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
CREATE INDEX IF NOT EXISTS idx_samples_category ON samples(category);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "analysis species lookup index",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_analyses_species ON analyses(species COLLATE NOCASE)`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
