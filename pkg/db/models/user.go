package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/enums"
)

// User is the account that owns listings or moderates them.
type User struct {
	ID    string `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"not null;uniqueIndex" json:"email"`

	// Stored hash, never exposed.
	PasswordHash string `gorm:"not null" json:"-"`

	Role     enums.UserRole `gorm:"not null;default:user" json:"role"`
	IsActive bool           `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = enums.RoleUser
	}
	return nil
}
