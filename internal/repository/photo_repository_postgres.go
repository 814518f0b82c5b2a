package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/picorama/server/internal/models"
)

// PhotoRepositoryPostgres handles journal entry persistence on PostgreSQL
type PhotoRepositoryPostgres struct {
	db *sql.DB
}

// NewPhotoRepositoryPostgres creates a new PhotoRepositoryPostgres
func NewPhotoRepositoryPostgres(db *sql.DB) *PhotoRepositoryPostgres {
	return &PhotoRepositoryPostgres{db: db}
}

// Insert adds a new entry, failing with models.ErrDuplicateName on a name conflict
func (r *PhotoRepositoryPostgres) Insert(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (name, day, timestamp, color, contrast)
		VALUES ($1, $2, $3, $4, $5)
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
func (r *PhotoRepositoryPostgres) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM photos").Scan(&count)
	return count, err
}

// RangeByTimestampDesc retrieves a window of entries, most recent first
func (r *PhotoRepositoryPostgres) RangeByTimestampDesc(ctx context.Context, offset, limit int) ([]*models.Photo, error) {
	query := `
		SELECT name, day, timestamp, color, contrast
		FROM photos
		ORDER BY timestamp DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPhotos(rows)
}

// MinDay returns the earliest entry's day, or nil when there are no entries
func (r *PhotoRepositoryPostgres) MinDay(ctx context.Context) (*time.Time, error) {
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
func (r *PhotoRepositoryPostgres) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM photos WHERE timestamp >= $1", since.Unix(),
	).Scan(&count)
	return count, err
}

// FindByMonthDay matches entries whose day shares the given "MM-DD" across all years
func (r *PhotoRepositoryPostgres) FindByMonthDay(ctx context.Context, monthDay string) ([]*models.Photo, error) {
	query := `
		SELECT name, day, timestamp, color, contrast
		FROM photos
		WHERE substr(day, 6) = $1
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
func (r *PhotoRepositoryPostgres) DeleteByDay(ctx context.Context, day time.Time) ([]string, error) {
	dayStr := day.UTC().Format(models.DayFormat)

	rows, err := r.db.QueryContext(ctx, "DELETE FROM photos WHERE day = $1 RETURNING name", dayStr)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}
