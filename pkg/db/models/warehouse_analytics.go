package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WarehouseAnalytics aggregates daily view counts per listing.
type WarehouseAnalytics struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	WarehouseID string    `gorm:"type:uuid;not null;index:idx_analytics_listing_day,unique" json:"warehouse_id"`
	Day         time.Time `gorm:"not null;index:idx_analytics_listing_day,unique" json:"day"`

	Views          int64 `gorm:"not null;default:0" json:"views"`
	UniqueVisitors int64 `gorm:"not null;default:0" json:"unique_visitors"`
	Inquiries      int64 `gorm:"not null;default:0" json:"inquiries"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WarehouseAnalytics) TableName() string {
	return "warehouse_analytics"
}

func (a *WarehouseAnalytics) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
