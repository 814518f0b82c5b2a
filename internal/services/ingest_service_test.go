package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picorama/server/internal/models"
	"github.com/picorama/server/internal/observability"
)

// insertFailRepo fails every insert to exercise the cleanup path
type insertFailRepo struct {
	fakePhotoRepo
	err error
}

func (r *insertFailRepo) Insert(ctx context.Context, photo *models.Photo) error {
	return r.err
}

func bytes2reader(b []byte) io.Reader {
	return bytes.NewReader(b)
}

func newTestLogger() *observability.Logger {
	logger := observability.NewLogger("test", observability.LevelError)
	logger.SetOutput(io.Discard)
	return logger
}

func TestIngestService_Ingest(t *testing.T) {
	ctx := context.Background()

	build := func(t *testing.T, repo *fakePhotoRepo) (*IngestService, *StorageService) {
		t.Helper()
		storage := setupTestStorage(t)
		svc := NewIngestService(
			NewNameService(),
			NewNormalizerService(storage, NewEXIFService()),
			NewPaletteService(),
			storage,
			repo,
		)
		return svc, storage
	}

	t.Run("persists an entry end to end", func(t *testing.T) {
		repo := &fakePhotoRepo{}
		svc, storage := build(t, repo)

		photo, err := svc.Ingest(ctx, IngestInput{
			Date:     "2021-06-15T14:30",
			Data:     testJPEG(t, 320, 240),
			MimeType: "image/jpeg",
		})
		require.NoError(t, err)

		assert.Equal(t, "2021-06-15-1623767400", photo.Name)
		assert.Regexp(t, `^#[0-9a-f]{6}$`, photo.Color)
		assert.Contains(t, []string{"#000000", "#ffffff"}, photo.Contrast)
		assert.True(t, storage.ExistsOriginal(photo.Name))
		assert.Len(t, repo.photos, 1)
	})

	t.Run("rejects a missing photo before touching disk", func(t *testing.T) {
		svc, _ := build(t, &fakePhotoRepo{})

		_, err := svc.Ingest(ctx, IngestInput{Date: "2021-06-15T14:30"})
		assert.ErrorIs(t, err, models.ErrMissingPhoto)
	})

	t.Run("rejects an oversized upload", func(t *testing.T) {
		repo := &fakePhotoRepo{}
		storage, err := NewStorageService(t.TempDir(), t.TempDir(), 0)
		require.NoError(t, err)
		svc := NewIngestService(NewNameService(), NewNormalizerService(storage, NewEXIFService()), NewPaletteService(), storage, repo)

		_, err = svc.Ingest(ctx, IngestInput{Date: "2021-06-15T14:30", Data: []byte("x"), MimeType: "image/jpeg"})
		assert.ErrorIs(t, err, models.ErrFileTooLarge)
	})

	t.Run("propagates date validation errors", func(t *testing.T) {
		svc, _ := build(t, &fakePhotoRepo{})
		data := testJPEG(t, 100, 80)

		_, err := svc.Ingest(ctx, IngestInput{Data: data, MimeType: "image/jpeg"})
		assert.ErrorIs(t, err, models.ErrMissingDate)

		_, err = svc.Ingest(ctx, IngestInput{Date: "2021-02-30T10:00", Data: data, MimeType: "image/jpeg"})
		assert.ErrorIs(t, err, models.ErrInvalidDate)
	})

	t.Run("same minute upload is a duplicate and keeps the first files", func(t *testing.T) {
		repo := &fakePhotoRepo{}
		svc, storage := build(t, repo)

		in := IngestInput{Date: "2021-06-15T14:30", Data: testJPEG(t, 200, 150), MimeType: "image/jpeg"}
		first, err := svc.Ingest(ctx, in)
		require.NoError(t, err)

		_, err = svc.Ingest(ctx, in)
		assert.ErrorIs(t, err, models.ErrDuplicateName)

		// The first entry's files must survive the failed second attempt
		assert.True(t, storage.ExistsOriginal(first.Name))
		assert.Len(t, repo.photos, 1)
	})

	t.Run("discards written files when the insert fails", func(t *testing.T) {
		storage := setupTestStorage(t)
		repo := &insertFailRepo{err: errors.New("database gone")}
		svc := NewIngestService(NewNameService(), NewNormalizerService(storage, NewEXIFService()), NewPaletteService(), storage, repo)

		_, err := svc.Ingest(ctx, IngestInput{
			Date:     "2021-06-15T14:30",
			Data:     testJPEG(t, 200, 150),
			MimeType: "image/jpeg",
		})
		require.Error(t, err)

		// No orphaned files, so the same upload can be retried
		assert.False(t, storage.ExistsOriginal("2021-06-15-1623767400"))

		files, listErr := storage.ListOriginals()
		require.NoError(t, listErr)
		assert.Empty(t, files)
	})

	t.Run("undecodable data leaves no files behind", func(t *testing.T) {
		repo := &fakePhotoRepo{}
		svc, storage := build(t, repo)

		_, err := svc.Ingest(ctx, IngestInput{Date: "2021-06-15T14:30", Data: []byte("junk"), MimeType: "image/jpeg"})
		assert.ErrorIs(t, err, models.ErrUnsupportedImage)

		files, listErr := storage.ListOriginals()
		require.NoError(t, listErr)
		assert.Empty(t, files)
	})
}

func TestImportService_Run(t *testing.T) {
	ctx := context.Background()

	build := func(t *testing.T) (*ImportService, *StorageService, *fakePhotoRepo) {
		t.Helper()
		storage := setupTestStorage(t)
		repo := &fakePhotoRepo{}
		names := NewNameService()
		svc := NewImportService(
			names,
			NewNormalizerService(storage, NewEXIFService()),
			NewPaletteService(),
			storage,
			repo,
			newTestLogger(),
		)
		return svc, storage, repo
	}

	t.Run("rebuilds the index from originals on disk", func(t *testing.T) {
		svc, storage, repo := build(t)

		for _, name := range []string{"2021-06-15-1623767400", "2021-06-16-1623853800"} {
			_, err := storage.WriteOriginal(name, bytes2reader(testJPEG(t, 160, 120)))
			require.NoError(t, err)
		}

		result, err := svc.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Imported)
		assert.Equal(t, 0, result.Skipped)
		assert.Len(t, repo.photos, 2)
	})

	t.Run("skips files that do not follow the naming scheme", func(t *testing.T) {
		svc, storage, repo := build(t)

		_, err := storage.WriteOriginal("2021-06-15-1623767400", bytes2reader(testJPEG(t, 160, 120)))
		require.NoError(t, err)
		_, err = storage.WriteOriginal("vacation", bytes2reader(testJPEG(t, 160, 120)))
		require.NoError(t, err)

		result, err := svc.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
		assert.Equal(t, 1, result.Skipped)
		assert.Len(t, repo.photos, 1)
	})

	t.Run("already indexed entries are skipped not duplicated", func(t *testing.T) {
		svc, storage, repo := build(t)

		_, err := storage.WriteOriginal("2021-06-15-1623767400", bytes2reader(testJPEG(t, 160, 120)))
		require.NoError(t, err)

		first, err := svc.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, first.Imported)

		second, err := svc.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, second.Imported)
		assert.Equal(t, 1, second.Skipped)
		assert.Len(t, repo.photos, 1)
	})
}

func TestDeleteService_DeleteDay(t *testing.T) {
	ctx := context.Background()

	t.Run("removes rows and files for the day", func(t *testing.T) {
		storage := setupTestStorage(t)
		repo := &fakePhotoRepo{}
		seedDay(repo, 2021, time.June, 15)
		seedDay(repo, 2021, time.June, 16)

		name := repo.photos[0].Name
		_, err := storage.WriteOriginal(name, bytes2reader([]byte("orig")))
		require.NoError(t, err)

		svc := NewDeleteService(storage, repo, newTestLogger())

		count, err := svc.DeleteDay(ctx, "2021-06-15")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Len(t, repo.photos, 1)
		assert.False(t, storage.ExistsOriginal(name))
	})

	t.Run("rejects a malformed day", func(t *testing.T) {
		svc := NewDeleteService(setupTestStorage(t), &fakePhotoRepo{}, newTestLogger())

		_, err := svc.DeleteDay(ctx, "June 15th")
		assert.ErrorIs(t, err, models.ErrInvalidDate)
	})
}
