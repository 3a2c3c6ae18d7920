// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ermimobile/emobile-backend/internal/models"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

type AdminService struct {
	db     *gorm.DB
	orders *OrderService
}

type AdminDashboardStats struct {
	Users         int64           `json:"users"`
	Products      int64           `json:"products"`
	Orders        int64           `json:"orders"`
	Revenue       decimal.Decimal `json:"revenue"`
	PendingOrders int64           `json:"pending_orders"`
	NewMessages   int64           `json:"new_messages"`
}

type AdminUserFilter struct {
	utils.PaginationParams
	Role *models.UserRole `json:"role,omitempty"`
}

type UpdateUserRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,user_role"`
}

func NewAdminService(db *gorm.DB, orders *OrderService) *AdminService {
	return &AdminService{
		db:     db,
		orders: orders,
	}
}

func (s *AdminService) GetDashboardStats() (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{}

	counts := []struct {
		model interface{}
		where string
		args  []interface{}
		dest  *int64
	}{
		{&models.User{}, "", nil, &stats.Users},
		{&models.Product{}, "", nil, &stats.Products},
		{&models.Order{}, "", nil, &stats.Orders},
		{&models.Order{}, "status = ?", []interface{}{models.OrderStatusPending}, &stats.PendingOrders},
		{&models.ContactMessage{}, "status = ?", []interface{}{models.ContactStatusNew}, &stats.NewMessages},
	}

	for _, c := range counts {
		query := s.db.Model(c.model)
		if c.where != "" {
			query = query.Where(c.where, c.args...)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to compute stats: %w", err)
		}
	}

	revenue, err := s.orders.Revenue()
	if err != nil {
		return nil, err
	}
	stats.Revenue = revenue

	return stats, nil
}

// User Management
func (s *AdminService) GetUsers(filter AdminUserFilter) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "email", "role"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

func (s *AdminService) UpdateUserRole(userID uuid.UUID, role models.UserRole, adminID uuid.UUID) (*models.User, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	if userID == adminID {
		return nil, ErrSelfRoleChange
	}

	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	oldRole := user.Role
	if err := s.db.Model(&user).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}

	go s.createAuditLog(adminID, "UPDATE_USER_ROLE", "user", &userID,
		map[string]interface{}{"from": oldRole, "to": role})

	return &user, nil
}

func (s *AdminService) createAuditLog(userID uuid.UUID, action, resourceType string, resourceID *uuid.UUID, newValues map[string]interface{}) {
	auditLog := &models.AuditLog{
		UserID:       &userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		NewValues:    models.JSONB(newValues),
	}
	if err := s.db.Create(auditLog).Error; err != nil {
		logrus.WithError(err).WithField("action", action).Error("Failed to create audit log")
	}
}
