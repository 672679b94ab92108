package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/enums"
)

// Warehouse is the listing record owners submit for moderation.
type Warehouse struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`
	// Nulled out when the owning account is deleted.
	OwnerID string `gorm:"type:uuid;index" json:"owner_id"`

	Name         string `gorm:"not null;index:idx_warehouses_name_address,unique" json:"name"`
	MobileNumber string `gorm:"not null" json:"mobile_number"`
	Email        string `gorm:"not null" json:"email"`
	Description  string `json:"description"`

	Address string `gorm:"not null;index:idx_warehouses_name_address,unique" json:"address"`
	City    string `gorm:"not null;index" json:"city"`
	State   string `gorm:"not null;index" json:"state"`
	PinCode string `gorm:"not null" json:"pin_code"`

	WarehouseType enums.WarehouseType `gorm:"not null;index" json:"warehouse_type"`
	OwnershipType enums.OwnershipType `gorm:"not null" json:"ownership_type"`
	ListingFor    enums.ListingFor    `gorm:"index" json:"listing_for"`
	PlotStatus    enums.PlotStatus    `json:"plot_status"`
	FloorPlans    enums.FloorPlan     `json:"floor_plans"`

	BuildUpArea      float64 `gorm:"not null" json:"build_up_area"`
	PlotArea         float64 `json:"plot_area"`
	TotalParkingArea float64 `json:"total_parking_area"`
	PlinthHeight     float64 `json:"plinth_height"`
	DockDoors        int     `json:"dock_doors"`
	ElectricityKVA   float64 `gorm:"column:electricity_kva" json:"electricity_kva"`
	Rent             float64 `gorm:"index" json:"rent"`
	Deposit          float64 `json:"deposit"`

	Comments string `json:"comments"`
	// Free-form JSON blob for attributes the schema does not model.
	AdditionalDetails string `gorm:"type:text" json:"-"`

	// Comma-joined relative paths; decoded at the edges.
	Images string `json:"-"`

	Status enums.ApprovalStatus `gorm:"not null;default:pending;index" json:"status"`

	Views   int64 `gorm:"not null;default:0" json:"views"`
	Version int64 `gorm:"not null;default:1" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Warehouse) TableName() string {
	return "warehouses"
}

func (w *Warehouse) BeforeCreate(_ *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Status == "" {
		w.Status = enums.ApprovalPending
	}
	if w.Version == 0 {
		w.Version = 1
	}
	return nil
}
