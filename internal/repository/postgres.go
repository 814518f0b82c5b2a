package repository

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// NewPostgresDB creates and initializes a PostgreSQL database connection
func NewPostgresDB(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := createPostgresTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createPostgresTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS photos (
		name TEXT PRIMARY KEY,
		day TEXT NOT NULL,
		timestamp BIGINT NOT NULL,
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
