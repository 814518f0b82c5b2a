package services

import (
	"context"
	"time"

	"github.com/picorama/server/internal/models"
	"github.com/picorama/server/internal/observability"
	"github.com/picorama/server/internal/repository"
)

// IngestInput is the validated upload payload for one journal entry
type IngestInput struct {
	Date     string // "YYYY-MM-DDTHH:MM"
	Data     []byte
	MimeType string
}

// IngestService runs the ingestion pipeline: codec, normalizer, palette,
// repository insert. File writes precede the database insert so a failed
// insert never leaves a row pointing at missing files; any failure discards
// the files written so far.
type IngestService struct {
	names      *NameService
	normalizer *NormalizerService
	palette    *PaletteService
	storage    *StorageService
	repo       repository.PhotoRepo
}

// NewIngestService creates a new IngestService
func NewIngestService(
	names *NameService,
	normalizer *NormalizerService,
	palette *PaletteService,
	storage *StorageService,
	repo repository.PhotoRepo,
) *IngestService {
	return &IngestService{
		names:      names,
		normalizer: normalizer,
		palette:    palette,
		storage:    storage,
		repo:       repo,
	}
}

// Ingest turns a raw upload into a persisted journal entry
func (s *IngestService) Ingest(ctx context.Context, in IngestInput) (*models.Photo, error) {
	ctx, span := observability.StartServiceSpan(ctx, "ingest", "Ingest")
	defer span.End()

	if len(in.Data) == 0 {
		return nil, models.ErrMissingPhoto
	}
	if err := s.storage.CheckSize(int64(len(in.Data))); err != nil {
		return nil, err
	}

	day, timestamp, err := s.names.ParseUploadDate(in.Date)
	if err != nil {
		return nil, err
	}

	name := s.names.CanonicalName(day, timestamp)
	span.SetAttributes(
		observability.EntryName(name),
		observability.EntryDay(day.Format(models.DayFormat)),
	)

	photo, err := s.ingestNamed(ctx, name, day, timestamp, in.Data, in.MimeType)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.SetSuccess(span)
	return photo, nil
}

// IngestNamed persists an entry under an already-canonicalized name; the
// importer uses it for backfill.
func (s *IngestService) IngestNamed(ctx context.Context, name string, day, timestamp time.Time, data []byte, mimeType string) (*models.Photo, error) {
	return s.ingestNamed(ctx, name, day, timestamp, data, mimeType)
}

func (s *IngestService) ingestNamed(ctx context.Context, name string, day, timestamp time.Time, data []byte, mimeType string) (*models.Photo, error) {
	img, written, err := s.normalizer.Normalize(data, mimeType, name)
	if err != nil {
		// Remove only what this attempt wrote; on a duplicate name the
		// existing entry's files stay untouched.
		s.storage.Discard(written)
		return nil, err
	}

	pal := s.palette.Extract(img)

	photo, err := models.NewPhoto(name, day, timestamp, pal.Color, pal.Contrast)
	if err != nil {
		s.storage.Discard(written)
		return nil, err
	}

	if err := s.repo.Insert(ctx, photo); err != nil {
		s.storage.Discard(written)
		return nil, err
	}

	return photo, nil
}
