package services

import (
	"context"
	"time"

	"github.com/picorama/server/internal/models"
	"github.com/picorama/server/internal/repository"
)

// CalendarService answers "on this day across years" and "which page contains
// date D" queries. Day-of-year counting starts at 1 = Jan 1 and follows the
// queried year's leap status.
type CalendarService struct {
	repo repository.PhotoRepo
}

// NewCalendarService creates a new CalendarService
func NewCalendarService(repo repository.PhotoRepo) *CalendarService {
	return &CalendarService{repo: repo}
}

// HistoryByDayOfYear resolves (year, dayOfYear) to a concrete month-day using
// that year's calendar and returns every entry sharing that month-day,
// regardless of year. In a leap year day 60 is Feb 29 and matches only
// literal Feb 29 entries; it never aliases to Feb 28 or Mar 1.
func (s *CalendarService) HistoryByDayOfYear(ctx context.Context, year, dayOfYear int) ([]*models.Photo, error) {
	if dayOfYear < 1 || dayOfYear > daysInYear(year) {
		return nil, models.ErrInvalidDate
	}

	date := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, dayOfYear-1)
	return s.repo.FindByMonthDay(ctx, date.Format("01-02"))
}

// PageForDate returns the feed page containing the given date under the
// reverse-chronological paging scheme. A zero day defaults to the 1st of the
// month. Dates newer than every entry resolve to page 1.
func (s *CalendarService) PageForDate(ctx context.Context, year int, month time.Month, day int) (int, error) {
	if day == 0 {
		day = 1
	}

	target := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow, so an impossible input comes back changed
	if target.Year() != year || target.Month() != month || target.Day() != day {
		return 0, models.ErrInvalidDate
	}

	count, err := s.repo.CountSince(ctx, target)
	if err != nil {
		return 0, err
	}

	page := (count + PostsPerPage - 1) / PostsPerPage
	if page < 1 {
		page = 1
	}
	return page, nil
}

func daysInYear(year int) int {
	if isLeapYear(year) {
		return 366
	}
	return 365
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
