package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/picorama/server/internal/models"
)

// PhotoRepository handles journal entry persistence on SQLite
type PhotoRepository struct {
	db *sql.DB
}

// NewPhotoRepository creates a new PhotoRepository
func NewPhotoRepository(db *sql.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Insert adds a new entry; a second entry with the same canonical name is a
// conflict, never an overwrite.
func (r *PhotoRepository) Insert(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (name, day, timestamp, color, contrast)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		photo.Name,
		photo.Day.UTC().Format(models.DayFormat),
		photo.Timestamp.Unix(),
		photo.Color,
		photo.Contrast,
	)

	if err != nil && isUniqueViolation(err) {
		return models.ErrDuplicateName
	}
	return err
}

// Count returns the total number of entries
func (r *PhotoRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM photos").Scan(&count)
	return count, err
}

// RangeByTimestampDesc retrieves a window of entries, most recent first
func (r *PhotoRepository) RangeByTimestampDesc(ctx context.Context, offset, limit int) ([]*models.Photo, error) {
	query := `
		SELECT name, day, timestamp, color, contrast
		FROM photos
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPhotos(rows)
}

// MinDay returns the earliest entry's day, or nil when there are no entries
func (r *PhotoRepository) MinDay(ctx context.Context) (*time.Time, error) {
	var day sql.NullString
	err := r.db.QueryRowContext(ctx, "SELECT MIN(day) FROM photos").Scan(&day)
	if err != nil {
		return nil, err
	}
	if !day.Valid {
		return nil, nil
	}

	t, err := time.ParseInLocation(models.DayFormat, day.String, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CountSince returns how many entries have a timestamp at or after the instant
func (r *PhotoRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM photos WHERE timestamp >= ?", since.Unix(),
	).Scan(&count)
	return count, err
}

// FindByMonthDay matches entries whose day shares the given "MM-DD" across all years
func (r *PhotoRepository) FindByMonthDay(ctx context.Context, monthDay string) ([]*models.Photo, error) {
	query := `
		SELECT name, day, timestamp, color, contrast
		FROM photos
		WHERE substr(day, 6) = ?
		ORDER BY timestamp DESC
	`

	rows, err := r.db.QueryContext(ctx, query, monthDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPhotos(rows)
}

// DeleteByDay removes every entry filed under the day and returns their names
// so the caller can remove the corresponding files.
func (r *PhotoRepository) DeleteByDay(ctx context.Context, day time.Time) ([]string, error) {
	dayStr := day.UTC().Format(models.DayFormat)

	rows, err := r.db.QueryContext(ctx, "SELECT name FROM photos WHERE day = ?", dayStr)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return []string{}, nil
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM photos WHERE day = ?", dayStr); err != nil {
		return nil, err
	}

	return names, nil
}

// scanPhotos reads entry rows into models, mapping the stored day string and
// epoch-second timestamp back to UTC times.
func scanPhotos(rows *sql.Rows) ([]*models.Photo, error) {
	var photos []*models.Photo
	for rows.Next() {
		var (
			photo models.Photo
			day   string
			ts    int64
		)
		if err := rows.Scan(&photo.Name, &day, &ts, &photo.Color, &photo.Contrast); err != nil {
			return nil, err
		}

		parsed, err := time.ParseInLocation(models.DayFormat, day, time.UTC)
		if err != nil {
			return nil, err
		}
		photo.Day = parsed
		photo.Timestamp = time.Unix(ts, 0).UTC()
		photos = append(photos, &photo)
	}

	if photos == nil {
		photos = []*models.Photo{}
	}

	return photos, rows.Err()
}

// isUniqueViolation reports whether the driver error is a primary key or
// unique constraint conflict.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}
