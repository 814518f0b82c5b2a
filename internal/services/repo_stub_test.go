package services

import (
	"context"
	"sort"
	"time"

	"github.com/picorama/server/internal/models"
)

// fakePhotoRepo is an in-memory repository for service tests
type fakePhotoRepo struct {
	photos []*models.Photo
}

func (r *fakePhotoRepo) Insert(ctx context.Context, photo *models.Photo) error {
	for _, p := range r.photos {
		if p.Name == photo.Name {
			return models.ErrDuplicateName
		}
	}
	r.photos = append(r.photos, photo)
	return nil
}

func (r *fakePhotoRepo) Count(ctx context.Context) (int, error) {
	return len(r.photos), nil
}

func (r *fakePhotoRepo) RangeByTimestampDesc(ctx context.Context, offset, limit int) ([]*models.Photo, error) {
	sorted := r.sortedDesc()
	if offset >= len(sorted) {
		return []*models.Photo{}, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], nil
}

func (r *fakePhotoRepo) MinDay(ctx context.Context) (*time.Time, error) {
	if len(r.photos) == 0 {
		return nil, nil
	}
	min := r.photos[0].Day
	for _, p := range r.photos[1:] {
		if p.Day.Before(min) {
			min = p.Day
		}
	}
	return &min, nil
}

func (r *fakePhotoRepo) CountSince(ctx context.Context, since time.Time) (int, error) {
	count := 0
	for _, p := range r.photos {
		if !p.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakePhotoRepo) FindByMonthDay(ctx context.Context, monthDay string) ([]*models.Photo, error) {
	matches := []*models.Photo{}
	for _, p := range r.sortedDesc() {
		if p.MonthDay() == monthDay {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (r *fakePhotoRepo) DeleteByDay(ctx context.Context, day time.Time) ([]string, error) {
	names := []string{}
	kept := r.photos[:0]
	for _, p := range r.photos {
		if p.Day.Equal(day) {
			names = append(names, p.Name)
		} else {
			kept = append(kept, p)
		}
	}
	r.photos = kept
	return names, nil
}

func (r *fakePhotoRepo) sortedDesc() []*models.Photo {
	sorted := make([]*models.Photo, len(r.photos))
	copy(sorted, r.photos)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	return sorted
}

// seedDay adds one noon entry for the given date
func seedDay(r *fakePhotoRepo, year int, month time.Month, day int) *models.Photo {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	ts := d.Add(12 * time.Hour)
	photo, err := models.NewPhoto(NewNameService().CanonicalName(d, ts), d, ts, "#336699", "#ffffff")
	if err != nil {
		panic(err)
	}
	if err := r.Insert(context.Background(), photo); err != nil {
		panic(err)
	}
	return photo
}
