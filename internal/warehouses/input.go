package warehouse

import (
	"encoding/json"
	"strings"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/db/models"
	pkgerrors "github.com/vijayg-dev/warehouse-listing-backend/pkg/errors"
)

// trimmed returns a copy with the string fields whitespace-trimmed.
func (in CreateInput) trimmed() CreateInput {
	in.Name = strings.TrimSpace(in.Name)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	in.Email = strings.TrimSpace(in.Email)
	in.Description = strings.TrimSpace(in.Description)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.PinCode = strings.TrimSpace(in.PinCode)
	in.Comments = strings.TrimSpace(in.Comments)
	in.AdditionalDetails = strings.TrimSpace(in.AdditionalDetails)
	return in
}

// validate enforces the required fields and enum domains.
func (in CreateInput) validate() error {
	missing := []string{}
	required := []struct {
		field string
		value string
	}{
		{"name", in.Name},
		{"mobile_number", in.MobileNumber},
		{"email", in.Email},
		{"address", in.Address},
		{"city", in.City},
		{"state", in.State},
		{"pin_code", in.PinCode},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.field)
		}
	}
	if in.WarehouseType == "" {
		missing = append(missing, "warehouse_type")
	}
	if in.OwnershipType == "" {
		missing = append(missing, "ownership_type")
	}
	if in.BuildUpArea <= 0 {
		missing = append(missing, "build_up_area")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").
			WithDetails(map[string]any{"fields": missing})
	}

	if !in.WarehouseType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid warehouse_type")
	}
	if !in.OwnershipType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid ownership_type")
	}
	if in.ListingFor != "" && !in.ListingFor.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid listing_for")
	}
	if in.PlotStatus != "" && !in.PlotStatus.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid plot_status")
	}
	if in.FloorPlans != "" && !in.FloorPlans.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid floor_plans")
	}
	if in.AdditionalDetails != "" && !json.Valid([]byte(in.AdditionalDetails)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "additional_details must be valid JSON")
	}
	return nil
}

func (in CreateInput) toModel() *models.Warehouse {
	return &models.Warehouse{
		Name:              in.Name,
		MobileNumber:      in.MobileNumber,
		Email:             in.Email,
		Description:       in.Description,
		Address:           in.Address,
		City:              in.City,
		State:             in.State,
		PinCode:           in.PinCode,
		WarehouseType:     in.WarehouseType,
		OwnershipType:     in.OwnershipType,
		ListingFor:        in.ListingFor,
		PlotStatus:        in.PlotStatus,
		FloorPlans:        in.FloorPlans,
		BuildUpArea:       in.BuildUpArea,
		PlotArea:          in.PlotArea,
		TotalParkingArea:  in.TotalParkingArea,
		PlinthHeight:      in.PlinthHeight,
		DockDoors:         in.DockDoors,
		ElectricityKVA:    in.ElectricityKVA,
		Rent:              in.Rent,
		Deposit:           in.Deposit,
		Comments:          in.Comments,
		AdditionalDetails: in.AdditionalDetails,
	}
}

// toUpdatesMap lists the owner-mutable columns for a guarded UPDATE.
func (in CreateInput) toUpdatesMap() map[string]any {
	return map[string]any{
		"name":               in.Name,
		"mobile_number":      in.MobileNumber,
		"email":              in.Email,
		"description":        in.Description,
		"address":            in.Address,
		"city":               in.City,
		"state":              in.State,
		"pin_code":           in.PinCode,
		"warehouse_type":     in.WarehouseType,
		"ownership_type":     in.OwnershipType,
		"listing_for":        in.ListingFor,
		"plot_status":        in.PlotStatus,
		"floor_plans":        in.FloorPlans,
		"build_up_area":      in.BuildUpArea,
		"plot_area":          in.PlotArea,
		"total_parking_area": in.TotalParkingArea,
		"plinth_height":      in.PlinthHeight,
		"dock_doors":         in.DockDoors,
		"electricity_kva":    in.ElectricityKVA,
		"rent":               in.Rent,
		"deposit":            in.Deposit,
		"comments":           in.Comments,
		"additional_details": in.AdditionalDetails,
	}
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalJSON(data string, v any) error {
	return json.Unmarshal([]byte(data), v)
}
