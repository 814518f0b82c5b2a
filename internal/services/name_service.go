package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/picorama/server/internal/models"
)

const uploadDateLayout = "2006-01-02T15:04"

var (
	uploadDatePattern    = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}$`)
	canonicalNamePattern = regexp.MustCompile(`^([0-9]{4}-[0-9]{2}-[0-9]{2})(?:-([0-9]+))?$`)
)

// NameService parses and canonicalizes the (day, timestamp) pair encoded in an
// entry's name. Pure; all calendar math happens in UTC from the literal date
// components, never from server-local wall clocks.
type NameService struct{}

// NewNameService creates a new NameService
func NewNameService() *NameService {
	return &NameService{}
}

// ParseUploadDate validates a "YYYY-MM-DDTHH:MM" upload date and splits it
// into the entry's calendar day (UTC midnight) and its capture instant.
// Minute precision is interpreted with a :00Z offset.
func (s *NameService) ParseUploadDate(date string) (day, timestamp time.Time, err error) {
	if strings.TrimSpace(date) == "" {
		return time.Time{}, time.Time{}, models.ErrMissingDate
	}
	if !uploadDatePattern.MatchString(date) {
		return time.Time{}, time.Time{}, models.ErrInvalidDate
	}

	// time.Parse also rejects impossible calendar dates like 2021-02-30
	timestamp, err = time.Parse(uploadDateLayout, date)
	if err != nil {
		return time.Time{}, time.Time{}, models.ErrInvalidDate
	}

	day = time.Date(timestamp.Year(), timestamp.Month(), timestamp.Day(), 0, 0, 0, 0, time.UTC)
	return day, timestamp, nil
}

// CanonicalName builds the unique "YYYY-MM-DD-<epochSeconds>" identifier
func (s *NameService) CanonicalName(day, timestamp time.Time) string {
	return day.UTC().Format(models.DayFormat) + "-" + strconv.FormatInt(timestamp.Unix(), 10)
}

// ParseCanonicalName is the inverse operation used on import: it recovers
// (day, timestamp) from a previously-canonicalized name. An absent epoch
// suffix means the timestamp equals the day itself.
func (s *NameService) ParseCanonicalName(name string) (day, timestamp time.Time, err error) {
	parts := canonicalNamePattern.FindStringSubmatch(name)
	if parts == nil {
		return time.Time{}, time.Time{}, models.ErrInvalidDate
	}

	day, err = time.ParseInLocation(models.DayFormat, parts[1], time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, models.ErrInvalidDate
	}

	if parts[2] == "" {
		return day, day, nil
	}

	epoch, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return time.Time{}, time.Time{}, models.ErrInvalidDate
	}

	return day, time.Unix(epoch, 0).UTC(), nil
}
