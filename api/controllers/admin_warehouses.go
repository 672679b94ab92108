package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vijayg-dev/warehouse-listing-backend/api/middleware"
	"github.com/vijayg-dev/warehouse-listing-backend/api/responses"
	"github.com/vijayg-dev/warehouse-listing-backend/api/validators"
	"github.com/vijayg-dev/warehouse-listing-backend/internal/analytics"
	warehousesvc "github.com/vijayg-dev/warehouse-listing-backend/internal/warehouses"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/enums"
	pkgerrors "github.com/vijayg-dev/warehouse-listing-backend/pkg/errors"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/logger"
)

// AdminListWarehouses is the moderation queue view with the full status range.
func AdminListWarehouses(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		adminID := middleware.UserIDFromContext(r.Context())
		q := listQueryFromRequest(r, warehousesvc.AudienceBrowse, adminID, true)

		result, err := svc.List(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminPendingWarehouses shortcuts the queue to fresh submissions.
func AdminPendingWarehouses(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		adminID := middleware.UserIDFromContext(r.Context())
		q := listQueryFromRequest(r, warehousesvc.AudienceBrowse, adminID, true)
		q.Status = string(enums.ApprovalPending)
		q.ShowAll = false

		result, err := svc.List(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func AdminGetWarehouse(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		adminID := middleware.UserIDFromContext(r.Context())
		id := strings.TrimSpace(chi.URLParam(r, "warehouseId"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing warehouse id"))
			return
		}

		listing, err := svc.Get(r.Context(), adminID, true, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listing)
	}
}

func AdminApproveWarehouse(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return reviewHandler(svc, logg, func(r *http.Request, svc warehousesvc.Service, adminID, id, comment string) (*warehousesvc.WarehouseDTO, error) {
		return svc.Approve(r.Context(), adminID, id, comment)
	})
}

func AdminRejectWarehouse(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return reviewHandler(svc, logg, func(r *http.Request, svc warehousesvc.Service, adminID, id, comment string) (*warehousesvc.WarehouseDTO, error) {
		return svc.Reject(r.Context(), adminID, id, comment)
	})
}

func reviewHandler(
	svc warehousesvc.Service,
	logg *logger.Logger,
	decide func(*http.Request, warehousesvc.Service, string, string, string) (*warehousesvc.WarehouseDTO, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		adminID := middleware.UserIDFromContext(r.Context())
		if adminID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "warehouseId"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing warehouse id"))
			return
		}

		comment, err := decodeReviewComment(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := decide(r, svc, adminID, id, comment)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listing)
	}
}

// decodeReviewComment tolerates an empty body; approval does not require one.
func decodeReviewComment(r *http.Request) (string, error) {
	defer io.Copy(io.Discard, r.Body)

	var payload struct {
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}
	return validators.SanitizeString(payload.Comment, 2000), nil
}

type adminUpdateRequest struct {
	Name         string `json:"name" validate:"required"`
	MobileNumber string `json:"mobile_number" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Description  string `json:"description,omitempty"`

	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	PinCode string `json:"pin_code" validate:"required"`

	WarehouseType string `json:"warehouse_type" validate:"required"`
	OwnershipType string `json:"ownership_type" validate:"required"`
	ListingFor    string `json:"listing_for,omitempty"`
	PlotStatus    string `json:"plot_status,omitempty"`
	FloorPlans    string `json:"floor_plans,omitempty"`

	BuildUpArea      float64 `json:"build_up_area" validate:"required,gt=0"`
	PlotArea         float64 `json:"plot_area,omitempty" validate:"omitempty,gte=0"`
	TotalParkingArea float64 `json:"total_parking_area,omitempty" validate:"omitempty,gte=0"`
	PlinthHeight     float64 `json:"plinth_height,omitempty" validate:"omitempty,gte=0"`
	DockDoors        int     `json:"dock_doors,omitempty" validate:"omitempty,gte=0"`
	ElectricityKVA   float64 `json:"electricity_kva,omitempty" validate:"omitempty,gte=0"`
	Rent             float64 `json:"rent,omitempty" validate:"omitempty,gte=0"`
	Deposit          float64 `json:"deposit,omitempty" validate:"omitempty,gte=0"`

	Comments          string          `json:"comments,omitempty"`
	AdditionalDetails json.RawMessage `json:"additional_details,omitempty"`
}

func (req adminUpdateRequest) toCreateInput() (warehousesvc.CreateInput, error) {
	input := warehousesvc.CreateInput{
		Name:              req.Name,
		MobileNumber:      req.MobileNumber,
		Email:             req.Email,
		Description:       req.Description,
		Address:           req.Address,
		City:              req.City,
		State:             req.State,
		PinCode:           req.PinCode,
		BuildUpArea:       req.BuildUpArea,
		PlotArea:          req.PlotArea,
		TotalParkingArea:  req.TotalParkingArea,
		PlinthHeight:      req.PlinthHeight,
		DockDoors:         req.DockDoors,
		ElectricityKVA:    req.ElectricityKVA,
		Rent:              req.Rent,
		Deposit:           req.Deposit,
		Comments:          req.Comments,
		AdditionalDetails: string(req.AdditionalDetails),
	}

	var err error
	if input.WarehouseType, err = parseEnumField(req.WarehouseType, "warehouse_type", enums.ParseWarehouseType); err != nil {
		return input, err
	}
	if input.OwnershipType, err = parseEnumField(req.OwnershipType, "ownership_type", enums.ParseOwnershipType); err != nil {
		return input, err
	}
	if input.ListingFor, err = parseEnumField(req.ListingFor, "listing_for", enums.ParseListingFor); err != nil {
		return input, err
	}
	if input.PlotStatus, err = parseEnumField(req.PlotStatus, "plot_status", enums.ParsePlotStatus); err != nil {
		return input, err
	}
	if input.FloorPlans, err = parseEnumField(req.FloorPlans, "floor_plans", enums.ParseFloorPlan); err != nil {
		return input, err
	}

	return input, nil
}

// AdminUpdateWarehouse edits listing fields without touching the approval
// state. Image changes stay on the owner path.
func AdminUpdateWarehouse(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "warehouseId"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing warehouse id"))
			return
		}

		var payload adminUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.AdminUpdate(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listing)
	}
}

func AdminDashboardStats(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		stats, err := svc.DashboardStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

// AdminAnalytics serves the traffic aggregates for a 7d/30d/90d window.
func AdminAnalytics(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		stats, err := svc.PeriodStats(r.Context(), r.URL.Query().Get("period"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
