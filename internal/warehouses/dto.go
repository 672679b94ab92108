package warehouse

import (
	"encoding/json"
	"time"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/db/models"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/enums"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/images"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/pagination"
)

// WarehouseDTO is the listing shape returned by every read path. Images are
// resolved to absolute URLs.
type WarehouseDTO struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	Name         string `json:"name"`
	MobileNumber string `json:"mobile_number"`
	Email        string `json:"email"`
	Description  string `json:"description,omitempty"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	PinCode string `json:"pin_code"`

	WarehouseType enums.WarehouseType `json:"warehouse_type"`
	OwnershipType enums.OwnershipType `json:"ownership_type"`
	ListingFor    enums.ListingFor    `json:"listing_for,omitempty"`
	PlotStatus    enums.PlotStatus    `json:"plot_status,omitempty"`
	FloorPlans    enums.FloorPlan     `json:"floor_plans,omitempty"`

	BuildUpArea      float64 `json:"build_up_area"`
	PlotArea         float64 `json:"plot_area,omitempty"`
	TotalParkingArea float64 `json:"total_parking_area,omitempty"`
	PlinthHeight     float64 `json:"plinth_height,omitempty"`
	DockDoors        int     `json:"dock_doors,omitempty"`
	ElectricityKVA   float64 `json:"electricity_kva,omitempty"`
	Rent             float64 `json:"rent,omitempty"`
	Deposit          float64 `json:"deposit,omitempty"`

	Comments          string          `json:"comments,omitempty"`
	AdditionalDetails json.RawMessage `json:"additional_details,omitempty"`

	Images []string `json:"images"`

	Status enums.ApprovalStatus `json:"approval_status"`
	Views  int64                `json:"views"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Approval *ApprovalDTO `json:"approval,omitempty"`
}

// ApprovalDTO exposes the moderation ticket on owner/admin reads.
type ApprovalDTO struct {
	Status       enums.ApprovalStatus `json:"status"`
	AdminComment string               `json:"admin_comment,omitempty"`
	ReviewedBy   string               `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time           `json:"reviewed_at,omitempty"`
}

// ListResult is one page of listings plus pagination metadata.
type ListResult struct {
	Items []WarehouseDTO  `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

// CreateInput holds the validated payload to create a listing.
type CreateInput struct {
	Name         string
	MobileNumber string
	Email        string
	Description  string

	Address string
	City    string
	State   string
	PinCode string

	WarehouseType enums.WarehouseType
	OwnershipType enums.OwnershipType
	ListingFor    enums.ListingFor
	PlotStatus    enums.PlotStatus
	FloorPlans    enums.FloorPlan

	BuildUpArea      float64
	PlotArea         float64
	TotalParkingArea float64
	PlinthHeight     float64
	DockDoors        int
	ElectricityKVA   float64
	Rent             float64
	Deposit          float64

	Comments string
	// Raw JSON; validated but stored untouched.
	AdditionalDetails string
}

// UpdateInput is the owner re-edit payload. KeepImages lists the stored
// relative paths the owner wants to retain.
type UpdateInput struct {
	CreateInput
	KeepImages []string
}

// OwnerStatsDTO summarizes one owner's portfolio.
type OwnerStatsDTO struct {
	Total      int64   `json:"total"`
	Pending    int64   `json:"pending"`
	Approved   int64   `json:"approved"`
	Rejected   int64   `json:"rejected"`
	TotalViews int64   `json:"total_views"`
	GrowthRate float64 `json:"growth_rate"`
}

// DashboardStatsDTO is the admin overview block.
type DashboardStatsDTO struct {
	Total        int64 `json:"total"`
	Pending      int64 `json:"pending"`
	Approved     int64 `json:"approved"`
	Rejected     int64 `json:"rejected"`
	CreatedLast7 int64 `json:"created_last_7_days"`
	TotalViews   int64 `json:"total_views"`
}

// PublicStatsDTO is the cached public marketplace summary.
type PublicStatsDTO struct {
	TotalApproved int64       `json:"total_approved"`
	ByType        []TypeCount `json:"by_type"`
	TopCities     []CityCount `json:"top_cities"`
}

func toDTO(wh *models.Warehouse, resolver images.Resolver, approval *models.WarehouseApproval) WarehouseDTO {
	dto := WarehouseDTO{
		ID:               wh.ID,
		OwnerID:          wh.OwnerID,
		Name:             wh.Name,
		MobileNumber:     wh.MobileNumber,
		Email:            wh.Email,
		Description:      wh.Description,
		Address:          wh.Address,
		City:             wh.City,
		State:            wh.State,
		PinCode:          wh.PinCode,
		WarehouseType:    wh.WarehouseType,
		OwnershipType:    wh.OwnershipType,
		ListingFor:       wh.ListingFor,
		PlotStatus:       wh.PlotStatus,
		FloorPlans:       wh.FloorPlans,
		BuildUpArea:      wh.BuildUpArea,
		PlotArea:         wh.PlotArea,
		TotalParkingArea: wh.TotalParkingArea,
		PlinthHeight:     wh.PlinthHeight,
		DockDoors:        wh.DockDoors,
		ElectricityKVA:   wh.ElectricityKVA,
		Rent:             wh.Rent,
		Deposit:          wh.Deposit,
		Comments:         wh.Comments,
		Images:           resolver.ResolveAll(wh.Images),
		Status:           wh.Status,
		Views:            wh.Views,
		CreatedAt:        wh.CreatedAt,
		UpdatedAt:        wh.UpdatedAt,
	}
	if wh.AdditionalDetails != "" {
		dto.AdditionalDetails = json.RawMessage(wh.AdditionalDetails)
	}
	if dto.Images == nil {
		dto.Images = []string{}
	}
	if approval != nil {
		dto.Approval = &ApprovalDTO{
			Status:       approval.Status,
			AdminComment: approval.AdminComment,
			ReviewedBy:   approval.ReviewedBy,
			ReviewedAt:   approval.ReviewedAt,
		}
	}
	return dto
}

func toDTOs(rows []models.Warehouse, resolver images.Resolver) []WarehouseDTO {
	out := make([]WarehouseDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i], resolver, nil))
	}
	return out
}
