// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name                     string     `json:"name" gorm:"size:100;not null"`
	Email                    string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash             string     `json:"-" gorm:"size:255;not null"`
	Role                     UserRole   `json:"role" gorm:"type:varchar(20);default:'user'"`
	EmailVerified            bool       `json:"email_verified" gorm:"default:false"`
	VerificationToken        *string    `json:"-" gorm:"size:64;index"`
	VerificationTokenExpires *time.Time `json:"-"`
	LastLoginAt              *time.Time `json:"last_login_at"`

	// Relationships
	Orders []Order `json:"orders,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
