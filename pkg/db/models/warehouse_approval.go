package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/enums"
)

// WarehouseApproval is the moderation ticket paired with each listing. It is
// written in the same transaction as the listing it tracks.
type WarehouseApproval struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	WarehouseID string `gorm:"type:uuid;not null;uniqueIndex" json:"warehouse_id"`

	Status       enums.ApprovalStatus `gorm:"not null;default:pending;index" json:"status"`
	AdminComment string               `json:"admin_comment"`

	ReviewedBy string     `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WarehouseApproval) TableName() string {
	return "warehouse_approvals"
}

func (a *WarehouseApproval) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = enums.ApprovalPending
	}
	return nil
}
