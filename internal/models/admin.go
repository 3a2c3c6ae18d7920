// internal/models/admin.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Setting struct {
	Key         string     `json:"key" gorm:"primaryKey;size:100"`
	Value       string     `json:"value" gorm:"type:text"`
	Description string     `json:"description,omitempty" gorm:"type:text"`
	UpdatedBy   *uuid.UUID `json:"updated_by,omitempty" gorm:"type:uuid"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	NewValues    JSONB      `json:"new_values" gorm:"type:text"`
	Status       int        `json:"status"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`
}

type ContactMessage struct {
	BaseModel
	Name    string        `json:"name" gorm:"size:100;not null"`
	Email   string        `json:"email" gorm:"size:255;not null"`
	Message string        `json:"message" gorm:"type:text;not null"`
	Status  ContactStatus `json:"status" gorm:"type:varchar(20);default:'new';index"`
}
