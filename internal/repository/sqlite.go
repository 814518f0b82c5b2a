package repository

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteDB creates and initializes a SQLite database
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	// day is the literal UTC calendar date (YYYY-MM-DD); timestamp is epoch
	// seconds, matching the suffix of the canonical name.
	schema := `
	CREATE TABLE IF NOT EXISTS photos (
		name TEXT PRIMARY KEY,
		day TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		color TEXT NOT NULL,
		contrast TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_photos_timestamp ON photos(timestamp);
	CREATE INDEX IF NOT EXISTS idx_photos_day ON photos(day);
	CREATE INDEX IF NOT EXISTS idx_photos_month_day ON photos(substr(day, 6));
	`

	_, err := db.Exec(schema)
	return err
}
