package repository

import (
	"context"
	"time"

	"github.com/picorama/server/internal/models"
)

// PhotoRepo defines the interface for journal entry persistence.
// All read queries return entries ordered by timestamp descending.
type PhotoRepo interface {
	// Insert adds one entry; a name collision fails with models.ErrDuplicateName.
	Insert(ctx context.Context, photo *models.Photo) error
	Count(ctx context.Context) (int, error)
	RangeByTimestampDesc(ctx context.Context, offset, limit int) ([]*models.Photo, error)
	// MinDay returns the earliest entry's day, or nil when the journal is empty.
	MinDay(ctx context.Context) (*time.Time, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
	// FindByMonthDay matches entries whose day has the given "MM-DD" regardless of year.
	FindByMonthDay(ctx context.Context, monthDay string) ([]*models.Photo, error)
	// DeleteByDay removes all entries filed under the given day and returns
	// their names so the caller can remove the corresponding files.
	DeleteByDay(ctx context.Context, day time.Time) ([]string, error)
}
