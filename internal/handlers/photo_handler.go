package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/picorama/server/internal/models"
	"github.com/picorama/server/internal/observability"
	"github.com/picorama/server/internal/services"
)

// PhotoHandler handles the journal endpoints: upload, feed pages, on-this-day
// history and date-to-page lookups.
type PhotoHandler struct {
	ingest     *services.IngestService
	pagination *services.PaginationService
	calendar   *services.CalendarService
	metrics    *observability.JournalMetrics
}

// NewPhotoHandler creates a new PhotoHandler
func NewPhotoHandler(
	ingest *services.IngestService,
	pagination *services.PaginationService,
	calendar *services.CalendarService,
	metrics *observability.JournalMetrics,
) *PhotoHandler {
	return &PhotoHandler{
		ingest:     ingest,
		pagination: pagination,
		calendar:   calendar,
		metrics:    metrics,
	}
}

// Add handles a journal entry upload. The request is multipart form data with
// a "date" field ("YYYY-MM-DDTHH:MM") and a "photo" file part.
func (h *PhotoHandler) Add(w http.ResponseWriter, r *http.Request) {
	log := observability.WithContext(r.Context())

	if err := r.ParseMultipartForm(50 << 20); err != nil {
		h.respondError(w, http.StatusBadRequest, "Request must be multipart/form-data.")
		return
	}

	date := r.FormValue("date")

	in := services.IngestInput{Date: date}
	file, header, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		content, readErr := io.ReadAll(file)
		if readErr != nil {
			h.respondError(w, http.StatusInternalServerError, "Failed to read file.")
			return
		}
		in.Data = content
		in.MimeType = header.Header.Get("Content-Type")
	}

	photo, err := h.ingest.Ingest(r.Context(), in)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordEntryUpload(r.Context(), int64(len(in.Data)), false)
		}
		h.respondServiceError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordEntryUpload(r.Context(), int64(len(in.Data)), true)
	}
	log.WithField("name", photo.Name).Info("Entry added")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Done"))
}

// Query returns one page of the reverse-chronological feed
func (h *PhotoHandler) Query(w http.ResponseWriter, r *http.Request) {
	// Non-positive pages are clamped to the first page downstream.
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Page must be an integer.")
		return
	}

	feed, err := h.pagination.Page(r.Context(), page)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordFeedRequest(r.Context(), page)
	}

	resp := models.PageResponse{
		Next:   feed.Next,
		Photos: models.PhotosToResponses(feed.Photos),
		Prev:   feed.Prev,
	}
	if feed.Start != nil {
		start := feed.Start.UTC().Format(models.DayFormat)
		resp.Start = &start
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// History returns every entry sharing the month-day named by a year and a
// 1-based day of that year.
func (h *PhotoHandler) History(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Year must be an integer.")
		return
	}
	dayOfYear, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Day must be an integer.")
		return
	}

	photos, err := h.calendar.HistoryByDayOfYear(r.Context(), year, dayOfYear)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	if h.metrics != nil {
		date := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, dayOfYear-1)
		h.metrics.RecordHistoryLookup(r.Context(), date.Format("01-02"))
	}

	h.respondJSON(w, http.StatusOK, models.HistoryResponse{
		Photos: models.PhotosToResponses(photos),
	})
}

// PageForDate resolves a calendar date to the feed page containing it. The
// day segment is optional and defaults to the first of the month.
func (h *PhotoHandler) PageForDate(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Year must be an integer.")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		h.respondError(w, http.StatusBadRequest, "Month must be between 1 and 12.")
		return
	}

	day := 0
	if dayStr := chi.URLParam(r, "day"); dayStr != "" {
		day, err = strconv.Atoi(dayStr)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Day must be an integer.")
			return
		}
	}

	page, err := h.calendar.PageForDate(r.Context(), year, time.Month(month), day)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.PageLookupResponse{Page: page})
}

// Helper methods

func (h *PhotoHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrMissingDate),
		errors.Is(err, models.ErrInvalidDate),
		errors.Is(err, models.ErrMissingPhoto),
		errors.Is(err, models.ErrUnsupportedImage),
		errors.Is(err, models.ErrPathTraversal):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrFileTooLarge):
		h.respondError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, models.ErrDuplicateName):
		h.respondError(w, http.StatusConflict, err.Error())
	default:
		observability.WithContext(r.Context()).Errorf("request failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Internal server error.")
	}
}

func (h *PhotoHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *PhotoHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.ErrorResponse{Error: message})
}
