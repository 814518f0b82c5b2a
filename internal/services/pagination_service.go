package services

import (
	"context"
	"time"

	"github.com/picorama/server/internal/models"
	"github.com/picorama/server/internal/repository"
)

// PostsPerPage is the fixed feed page size
const PostsPerPage = 7

// FeedPage is one page of the reverse-chronological feed plus its navigation
// pointers.
type FeedPage struct {
	Next   *int
	Photos []*models.Photo
	Prev   *int
	Start  *time.Time
}

// PaginationService maps a requested page number to a repository window and
// computes the next/prev pointers, clamped to the valid range.
type PaginationService struct {
	repo repository.PhotoRepo
}

// NewPaginationService creates a new PaginationService
func NewPaginationService(repo repository.PhotoRepo) *PaginationService {
	return &PaginationService{repo: repo}
}

// Page fetches page n (1-based). Out-of-range requests return an empty photo
// list whose prev pointer is clamped to the last valid page, so clients can
// always recover by following prev.
func (s *PaginationService) Page(ctx context.Context, page int) (*FeedPage, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	maxPages := (total + PostsPerPage - 1) / PostsPerPage
	offset := (page - 1) * PostsPerPage
	if offset < 0 {
		offset = 0
	}

	photos, err := s.repo.RangeByTimestampDesc(ctx, offset, PostsPerPage)
	if err != nil {
		return nil, err
	}

	result := &FeedPage{Photos: photos}

	if offset+PostsPerPage < total {
		next := page + 1
		result.Next = &next
	}

	if page > 1 {
		prev := page - 1
		if prev > maxPages {
			prev = maxPages
		}
		result.Prev = &prev
	}

	start, err := s.repo.MinDay(ctx)
	if err != nil {
		return nil, err
	}
	result.Start = start

	return result, nil
}
