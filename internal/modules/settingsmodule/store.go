package settingsmodule

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camarr-app/camarr/internal/database"
)

// Store is the flat per-camera key/value contract the settings engine runs
// against. Each call is atomic on its own; there is no transaction across
// calls, so multi-key updates are eventually consistent and readers must
// tolerate partial states.
type Store interface {
	// Get returns the stored value for a key. A missing key is
	// (value "", present false, error nil); the error is reserved for
	// storage failures.
	Get(ctx context.Context, cameraID, key string) (string, bool, error)

	// Set stores a value, replacing any previous one.
	Set(ctx context.Context, cameraID, key, value string) error

	// Remove deletes a key. Removing an absent key is not an error.
	Remove(ctx context.Context, cameraID, key string) error

	// RemoveAll deletes every key for a camera.
	RemoveAll(ctx context.Context, cameraID string) error
}

// GormStore persists settings in the camera_settings table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by the given connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, cameraID, key string) (string, bool, error) {
	var setting database.CameraSetting
	err := s.db.WithContext(ctx).
		Where("camera_id = ? AND key = ?", cameraID, key).
		First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return setting.Value, true, nil
}

func (s *GormStore) Set(ctx context.Context, cameraID, key, value string) error {
	setting := database.CameraSetting{
		CameraID: cameraID,
		Key:      key,
		Value:    value,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "camera_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) Remove(ctx context.Context, cameraID, key string) error {
	err := s.db.WithContext(ctx).
		Where("camera_id = ? AND key = ?", cameraID, key).
		Delete(&database.CameraSetting{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove setting %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) RemoveAll(ctx context.Context, cameraID string) error {
	err := s.db.WithContext(ctx).
		Where("camera_id = ?", cameraID).
		Delete(&database.CameraSetting{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove settings for camera %s: %w", cameraID, err)
	}
	return nil
}
