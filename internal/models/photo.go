package models

import (
	"regexp"
	"strings"
	"time"
)

// DayFormat is the calendar-date layout used in canonical names and the day column.
const DayFormat = "2006-01-02"

// Photo is a single journal entry: one photo filed under one calendar day.
// Records are immutable once created.
type Photo struct {
	Name      string    `json:"name"`
	Day       time.Time `json:"day"`
	Timestamp time.Time `json:"timestamp"`
	Color     string    `json:"color"`
	Contrast  string    `json:"contrast"`
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

// NewPhoto creates a new Photo with validation
func NewPhoto(name string, day, timestamp time.Time, color, contrast string) (*Photo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if day.IsZero() {
		return nil, ErrInvalidDate
	}
	if timestamp.Before(day) {
		return nil, ErrInvalidTimestamp
	}
	if !hexColorPattern.MatchString(color) || !hexColorPattern.MatchString(contrast) {
		return nil, ErrInvalidColor
	}

	return &Photo{
		Name:      name,
		Day:       day.UTC(),
		Timestamp: timestamp.UTC(),
		Color:     color,
		Contrast:  contrast,
	}, nil
}

// MonthDay returns the entry's "MM-DD" partition key for on-this-day lookups.
func (p *Photo) MonthDay() string {
	return p.Day.UTC().Format("01-02")
}

// Errors
type PhotoError struct {
	Message string
}

func (e PhotoError) Error() string {
	return e.Message
}

var (
	ErrMissingDate      = PhotoError{"date is required"}
	ErrInvalidDate      = PhotoError{"date is invalid"}
	ErrMissingPhoto     = PhotoError{"photo file is required"}
	ErrUnsupportedImage = PhotoError{"image data could not be decoded"}
	ErrDuplicateName    = PhotoError{"an entry with this name already exists"}
	ErrEmptyName        = PhotoError{"entry name cannot be empty"}
	ErrInvalidTimestamp = PhotoError{"timestamp precedes the start of its day"}
	ErrInvalidColor     = PhotoError{"color must be a #rrggbb hex string"}
	ErrFileTooLarge     = PhotoError{"file size exceeds maximum allowed"}
	ErrPathTraversal    = PhotoError{"invalid name - path traversal detected"}
)
