package settingsmodule

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/camarr-app/camarr/internal/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&database.Camera{}, &database.CameraSetting{}))
	return db
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewGormStore(setupTestDB(t))
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "cam-1", KeyDetectAudio)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "cam-1", KeyDetectAudio, "true"))

	value, ok, err := store.Get(ctx, "cam-1", KeyDetectAudio)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", value)
}

func TestStoreSetOverwrites(t *testing.T) {
	store := NewGormStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cam-1", KeyStreamChannel, "High"))
	require.NoError(t, store.Set(ctx, "cam-1", KeyStreamChannel, "Low"))

	value, ok, err := store.Get(ctx, "cam-1", KeyStreamChannel)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Low", value)

	// Overwriting must not grow the table.
	var count int64
	require.NoError(t, store.db.Model(&database.CameraSetting{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStoreKeysAreScopedPerCamera(t *testing.T) {
	store := NewGormStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cam-1", KeyStreamChannel, "High"))
	require.NoError(t, store.Set(ctx, "cam-2", KeyStreamChannel, "Low"))

	v1, _, err := store.Get(ctx, "cam-1", KeyStreamChannel)
	require.NoError(t, err)
	v2, _, err := store.Get(ctx, "cam-2", KeyStreamChannel)
	require.NoError(t, err)
	assert.Equal(t, "High", v1)
	assert.Equal(t, "Low", v2)
}

func TestStoreRemove(t *testing.T) {
	store := NewGormStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cam-1", KeyDynamicBitrate, "true"))
	require.NoError(t, store.Remove(ctx, "cam-1", KeyDynamicBitrate))

	_, ok, err := store.Get(ctx, "cam-1", KeyDynamicBitrate)
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing an absent key is not an error.
	assert.NoError(t, store.Remove(ctx, "cam-1", KeyDynamicBitrate))
}

func TestStoreRemoveAll(t *testing.T) {
	store := NewGormStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cam-1", KeyDetectAudio, "true"))
	require.NoError(t, store.Set(ctx, "cam-1", KeyStreamChannel, "High"))
	require.NoError(t, store.Set(ctx, "cam-2", KeyDetectAudio, "true"))

	require.NoError(t, store.RemoveAll(ctx, "cam-1"))

	_, ok, err := store.Get(ctx, "cam-1", KeyDetectAudio)
	require.NoError(t, err)
	assert.False(t, ok)

	// Other cameras keep their settings.
	_, ok, err = store.Get(ctx, "cam-2", KeyDetectAudio)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStoreGetSurfacesStorageErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT (.+) FROM "camera_settings"`).
		WillReturnError(errors.New("connection reset"))

	store := NewGormStore(db)
	_, _, err = store.Get(context.Background(), "cam-1", KeyDetectAudio)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
