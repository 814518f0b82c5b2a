package models

import "time"

// PhotoResponse is the JSON representation of a journal entry
type PhotoResponse struct {
	Name      string `json:"name"`
	Day       string `json:"day"`
	Timestamp int64  `json:"timestamp"`
	Color     string `json:"color"`
	Contrast  string `json:"contrast"`
}

// PhotoToResponse converts a Photo to its response DTO
func PhotoToResponse(p *Photo) PhotoResponse {
	return PhotoResponse{
		Name:      p.Name,
		Day:       p.Day.UTC().Format(DayFormat),
		Timestamp: p.Timestamp.Unix(),
		Color:     p.Color,
		Contrast:  p.Contrast,
	}
}

// PhotosToResponses converts a slice of Photos, never returning nil
func PhotosToResponses(photos []*Photo) []PhotoResponse {
	responses := make([]PhotoResponse, len(photos))
	for i, p := range photos {
		responses[i] = PhotoToResponse(p)
	}
	return responses
}

// PageResponse is one page of the reverse-chronological feed
type PageResponse struct {
	Next   *int            `json:"next"`
	Photos []PhotoResponse `json:"photos"`
	Prev   *int            `json:"prev"`
	Start  *string         `json:"start"`
}

// HistoryResponse holds all entries matching an on-this-day lookup
type HistoryResponse struct {
	Photos []PhotoResponse `json:"photos"`
}

// PageLookupResponse resolves a calendar date to a feed page number
type PageLookupResponse struct {
	Page int `json:"page"`
}

// ErrorResponse is a generic error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse for health check endpoint
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
