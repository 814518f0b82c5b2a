package services

import (
	"context"
	"time"

	"github.com/picorama/server/internal/models"
	"github.com/picorama/server/internal/observability"
	"github.com/picorama/server/internal/repository"
)

// DeleteService removes all entries for a calendar day, keeping the files on
// disk consistent with the database: every deleted row's original and
// derivatives are removed as well.
type DeleteService struct {
	storage *StorageService
	repo    repository.PhotoRepo
	log     *observability.Logger
}

// NewDeleteService creates a new DeleteService
func NewDeleteService(storage *StorageService, repo repository.PhotoRepo, log *observability.Logger) *DeleteService {
	return &DeleteService{storage: storage, repo: repo, log: log}
}

// DeleteDay removes every entry filed under the given "YYYY-MM-DD" day and
// returns how many were deleted.
func (s *DeleteService) DeleteDay(ctx context.Context, day string) (int, error) {
	parsed, err := time.ParseInLocation(models.DayFormat, day, time.UTC)
	if err != nil {
		return 0, models.ErrInvalidDate
	}

	names, err := s.repo.DeleteByDay(ctx, parsed)
	if err != nil {
		return 0, err
	}

	for _, name := range names {
		if !s.storage.RemoveEntry(name) {
			s.log.Warnf("No original file found for deleted entry %s", name)
		}
	}

	return len(names), nil
}
