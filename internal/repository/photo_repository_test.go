package repository

import (
	"context"
	"database/sql"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picorama/server/internal/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func mustPhoto(t *testing.T, year int, month time.Month, dayNum, hour int) *models.Photo {
	t.Helper()

	day := time.Date(year, month, dayNum, 0, 0, 0, 0, time.UTC)
	ts := day.Add(time.Duration(hour) * time.Hour)
	name := day.Format(models.DayFormat) + "-" + strconv.FormatInt(ts.Unix(), 10)

	photo, err := models.NewPhoto(name, day, ts, "#336699", "#ffffff")
	require.NoError(t, err)
	return photo
}

func TestPhotoRepository_Insert(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts and reads back an entry", func(t *testing.T) {
		repo := NewPhotoRepository(setupTestDB(t))
		photo := mustPhoto(t, 2021, time.June, 15, 14)

		require.NoError(t, repo.Insert(ctx, photo))

		photos, err := repo.RangeByTimestampDesc(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, photos, 1)

		got := photos[0]
		assert.Equal(t, photo.Name, got.Name)
		assert.True(t, photo.Day.Equal(got.Day), "day mismatch: %v vs %v", photo.Day, got.Day)
		assert.True(t, photo.Timestamp.Equal(got.Timestamp))
		assert.Equal(t, "#336699", got.Color)
		assert.Equal(t, "#ffffff", got.Contrast)
	})

	t.Run("duplicate name is a conflict not an overwrite", func(t *testing.T) {
		repo := NewPhotoRepository(setupTestDB(t))
		photo := mustPhoto(t, 2021, time.June, 15, 14)

		require.NoError(t, repo.Insert(ctx, photo))

		dupe, err := models.NewPhoto(photo.Name, photo.Day, photo.Timestamp, "#000000", "#ffffff")
		require.NoError(t, err)

		err = repo.Insert(ctx, dupe)
		assert.ErrorIs(t, err, models.ErrDuplicateName)

		// Original row untouched
		photos, err := repo.RangeByTimestampDesc(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, photos, 1)
		assert.Equal(t, "#336699", photos[0].Color)
	})
}

func TestPhotoRepository_RangeByTimestampDesc(t *testing.T) {
	ctx := context.Background()

	t.Run("orders newest first and honors the window", func(t *testing.T) {
		repo := NewPhotoRepository(setupTestDB(t))
		for day := 1; day <= 10; day++ {
			require.NoError(t, repo.Insert(ctx, mustPhoto(t, 2021, time.June, day, 12)))
		}

		window, err := repo.RangeByTimestampDesc(ctx, 2, 3)
		require.NoError(t, err)
		require.Len(t, window, 3)

		assert.Equal(t, 8, window[0].Day.Day())
		assert.Equal(t, 7, window[1].Day.Day())
		assert.Equal(t, 6, window[2].Day.Day())
	})

	t.Run("empty table yields an empty slice", func(t *testing.T) {
		repo := NewPhotoRepository(setupTestDB(t))

		photos, err := repo.RangeByTimestampDesc(ctx, 0, 7)
		require.NoError(t, err)
		assert.NotNil(t, photos)
		assert.Empty(t, photos)
	})
}

func TestPhotoRepository_Counts(t *testing.T) {
	ctx := context.Background()

	t.Run("counts all entries", func(t *testing.T) {
		repo := NewPhotoRepository(setupTestDB(t))
		for day := 1; day <= 5; day++ {
			require.NoError(t, repo.Insert(ctx, mustPhoto(t, 2021, time.June, day, 12)))
		}

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, count)
	})

	t.Run("counts entries at or after an instant", func(t *testing.T) {
		repo := NewPhotoRepository(setupTestDB(t))
		for day := 1; day <= 5; day++ {
			require.NoError(t, repo.Insert(ctx, mustPhoto(t, 2021, time.June, day, 12)))
		}

		count, err := repo.CountSince(ctx, time.Date(2021, 6, 3, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestPhotoRepository_MinDay(t *testing.T) {
	ctx := context.Background()

	t.Run("nil on an empty table", func(t *testing.T) {
		repo := NewPhotoRepository(setupTestDB(t))

		day, err := repo.MinDay(ctx)
		require.NoError(t, err)
		assert.Nil(t, day)
	})

	t.Run("returns the earliest day", func(t *testing.T) {
		repo := NewPhotoRepository(setupTestDB(t))
		require.NoError(t, repo.Insert(ctx, mustPhoto(t, 2021, time.June, 15, 12)))
		require.NoError(t, repo.Insert(ctx, mustPhoto(t, 2019, time.March, 2, 12)))
		require.NoError(t, repo.Insert(ctx, mustPhoto(t, 2020, time.December, 31, 12)))

		day, err := repo.MinDay(ctx)
		require.NoError(t, err)
		require.NotNil(t, day)
		assert.True(t, day.Equal(time.Date(2019, 3, 2, 0, 0, 0, 0, time.UTC)))
	})
}

func TestPhotoRepository_FindByMonthDay(t *testing.T) {
	ctx := context.Background()

	t.Run("matches across years only on the literal month-day", func(t *testing.T) {
		repo := NewPhotoRepository(setupTestDB(t))
		require.NoError(t, repo.Insert(ctx, mustPhoto(t, 2020, time.February, 29, 12)))
		require.NoError(t, repo.Insert(ctx, mustPhoto(t, 2024, time.February, 29, 12)))
		require.NoError(t, repo.Insert(ctx, mustPhoto(t, 2021, time.February, 28, 12)))
		require.NoError(t, repo.Insert(ctx, mustPhoto(t, 2021, time.March, 1, 12)))

		photos, err := repo.FindByMonthDay(ctx, "02-29")
		require.NoError(t, err)
		require.Len(t, photos, 2)

		// Newest first
		assert.Equal(t, 2024, photos[0].Day.Year())
		assert.Equal(t, 2020, photos[1].Day.Year())
	})

	t.Run("no matches yields an empty slice", func(t *testing.T) {
		repo := NewPhotoRepository(setupTestDB(t))

		photos, err := repo.FindByMonthDay(ctx, "07-04")
		require.NoError(t, err)
		assert.NotNil(t, photos)
		assert.Empty(t, photos)
	})
}

func TestPhotoRepository_DeleteByDay(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes every entry of the day and returns their names", func(t *testing.T) {
		repo := NewPhotoRepository(setupTestDB(t))
		morning := mustPhoto(t, 2021, time.June, 15, 8)
		evening := mustPhoto(t, 2021, time.June, 15, 20)
		other := mustPhoto(t, 2021, time.June, 16, 12)
		for _, p := range []*models.Photo{morning, evening, other} {
			require.NoError(t, repo.Insert(ctx, p))
		}

		names, err := repo.DeleteByDay(ctx, time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{morning.Name, evening.Name}, names)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("an untouched day deletes nothing", func(t *testing.T) {
		repo := NewPhotoRepository(setupTestDB(t))
		require.NoError(t, repo.Insert(ctx, mustPhoto(t, 2021, time.June, 16, 12)))

		names, err := repo.DeleteByDay(ctx, time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Empty(t, names)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
