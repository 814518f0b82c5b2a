package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/picorama/server/internal/models"
	"github.com/picorama/server/internal/observability"
	"github.com/picorama/server/internal/repository"
)

// ImportService backfills the journal from originals already present in the
// media root: each filename is decoded back into (day, timestamp), the
// derivatives are rebuilt, and one record is inserted. Files that fail are
// skipped with a warning, never fatal.
type ImportService struct {
	names      *NameService
	normalizer *NormalizerService
	palette    *PaletteService
	storage    *StorageService
	repo       repository.PhotoRepo
	log        *observability.Logger
}

// ImportResult summarizes one bulk import run
type ImportResult struct {
	Imported int
	Skipped  int
}

// NewImportService creates a new ImportService
func NewImportService(
	names *NameService,
	normalizer *NormalizerService,
	palette *PaletteService,
	storage *StorageService,
	repo repository.PhotoRepo,
	log *observability.Logger,
) *ImportService {
	return &ImportService{
		names:      names,
		normalizer: normalizer,
		palette:    palette,
		storage:    storage,
		repo:       repo,
		log:        log,
	}
}

// Run imports every parseable original from the media root
func (s *ImportService) Run(ctx context.Context) (*ImportResult, error) {
	files, err := s.storage.ListOriginals()
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, file := range files {
		if err := s.importFile(ctx, file); err != nil {
			if errors.Is(err, models.ErrDuplicateName) {
				s.log.Debugf("Skipping %s: already indexed", file)
			} else {
				s.log.Warnf("Skipping %s: %v", file, err)
			}
			result.Skipped++
			continue
		}
		s.log.Infof("Imported %s", file)
		result.Imported++
	}

	return result, nil
}

func (s *ImportService) importFile(ctx context.Context, file string) error {
	name := strings.TrimSuffix(file, filepath.Ext(file))

	day, timestamp, err := s.names.ParseCanonicalName(name)
	if err != nil {
		return err
	}

	data, err := s.storage.ReadOriginal(file)
	if err != nil {
		return err
	}

	// The original already exists on disk, so only the derivatives are
	// (re)built before inserting the record.
	img, err := s.normalizer.RebuildDerivatives(data, "", name)
	if err != nil {
		return err
	}

	pal := s.palette.Extract(img)

	photo, err := models.NewPhoto(name, day, timestamp, pal.Color, pal.Contrast)
	if err != nil {
		return err
	}

	return s.repo.Insert(ctx, photo)
}
