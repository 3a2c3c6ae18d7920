// internal/services/settings_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ermimobile/emobile-backend/internal/models"
)

const HeroImageSetting = "hero_background_image"

type SettingsService struct {
	db *gorm.DB
}

type UpdateSettingRequest struct {
	Value string `json:"value" validate:"max=5000"`
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// GetAll returns every setting as a flat key/value map.
func (s *SettingsService) GetAll() (map[string]string, error) {
	var settings []models.Setting
	if err := s.db.Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	values := make(map[string]string, len(settings))
	for _, setting := range settings {
		values[setting.Key] = setting.Value
	}
	return values, nil
}

// Update inserts or replaces one setting.
func (s *SettingsService) Update(key, value string, updatedBy *uuid.UUID) (*models.Setting, error) {
	setting := &models.Setting{
		Key:       key,
		Value:     value,
		UpdatedBy: updatedBy,
		UpdatedAt: time.Now(),
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(setting).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update setting %s: %w", key, err)
	}

	logrus.WithField("key", key).Info("Setting updated")
	return setting, nil
}

func (s *SettingsService) PaymentInfo(method models.PaymentMethod) (*PaymentInfo, error) {
	settings, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	return ProjectPaymentInfo(method, settings)
}
