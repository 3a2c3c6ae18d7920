// internal/services/contact_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ermimobile/emobile-backend/internal/models"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

type ContactService struct {
	db *gorm.DB
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=5,max=5000"`
}

type UpdateContactStatusRequest struct {
	Status models.ContactStatus `json:"status" validate:"required,oneof=new read replied"`
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

func (s *ContactService) Create(req *ContactRequest) (*models.ContactMessage, error) {
	message := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   normalizeEmail(req.Email),
		Message: strings.TrimSpace(req.Message),
		Status:  models.ContactStatusNew,
	}

	if err := s.db.Create(message).Error; err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	logrus.WithField("contact_id", message.ID).Info("Contact message received")
	return message, nil
}

func (s *ContactService) List(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.ContactMessage{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	var messages []models.ContactMessage
	query = utils.ApplySort(query, params, []string{"created_at", "status"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	result := utils.CreatePaginationResult(messages, total, params)
	return &result, nil
}

func (s *ContactService) UpdateStatus(id uuid.UUID, status models.ContactStatus) (*models.ContactMessage, error) {
	var message models.ContactMessage
	if err := s.db.Where("id = ?", id).First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&message).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update message: %w", err)
	}
	message.Status = status
	return &message, nil
}

func (s *ContactService) Delete(id uuid.UUID) error {
	result := s.db.Where("id = ?", id).Delete(&models.ContactMessage{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrContactNotFound
	}
	return nil
}
