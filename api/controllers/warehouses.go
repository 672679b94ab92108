package controllers

import (
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vijayg-dev/warehouse-listing-backend/api/middleware"
	"github.com/vijayg-dev/warehouse-listing-backend/api/responses"
	"github.com/vijayg-dev/warehouse-listing-backend/api/validators"
	warehousesvc "github.com/vijayg-dev/warehouse-listing-backend/internal/warehouses"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/enums"
	pkgerrors "github.com/vijayg-dev/warehouse-listing-backend/pkg/errors"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/logger"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/pagination"
)

// multipart forms buffer to disk past this threshold.
const maxMultipartMemory = 32 << 20

// CreateWarehouse handles the owner listing submission as a multipart form.
func CreateWarehouse(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		input, files, _, err := decodeListingForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Create(r.Context(), userID, input, files)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}

// UpdateWarehouse handles the owner re-edit. Dropping images is expressed by
// omitting their paths from keep_images.
func UpdateWarehouse(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "warehouseId"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing warehouse id"))
			return
		}

		input, files, keep, err := decodeListingForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Update(r.Context(), userID, id, warehousesvc.UpdateInput{
			CreateInput: input,
			KeepImages:  keep,
		}, files)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listing)
	}
}

func DeleteWarehouse(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "warehouseId"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing warehouse id"))
			return
		}

		isAdmin := middleware.RoleFromContext(r.Context()) == string(enums.RoleAdmin)
		if err := svc.Delete(r.Context(), userID, isAdmin, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "listing deleted"})
	}
}

// ListWarehouses is the authenticated browse view: the caller's own listings
// mixed with everything approved.
func ListWarehouses(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		isAdmin := middleware.RoleFromContext(r.Context()) == string(enums.RoleAdmin)
		q := listQueryFromRequest(r, warehousesvc.AudienceBrowse, userID, isAdmin)

		result, err := svc.List(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// MyWarehouses is the owner's own portfolio view.
func MyWarehouses(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		q := listQueryFromRequest(r, warehousesvc.AudienceOwnerSelf, userID, false)

		result, err := svc.List(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func OwnerWarehouseStats(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		stats, err := svc.OwnerStats(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

func GetWarehouse(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "warehouseId"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing warehouse id"))
			return
		}

		isAdmin := middleware.RoleFromContext(r.Context()) == string(enums.RoleAdmin)
		listing, err := svc.Get(r.Context(), userID, isAdmin, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listing)
	}
}

// decodeListingForm parses the multipart listing payload shared by create and
// update. Enum validity is checked here; required-field checks live in the
// service so JSON admin edits get the same treatment.
func decodeListingForm(r *http.Request) (warehousesvc.CreateInput, []*multipart.FileHeader, []string, error) {
	var input warehousesvc.CreateInput

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return input, nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	input.Name = validators.SanitizeString(r.FormValue("name"), 200)
	input.MobileNumber = validators.SanitizeString(r.FormValue("mobile_number"), 20)
	input.Email = validators.SanitizeString(r.FormValue("email"), 254)
	input.Description = validators.SanitizeString(r.FormValue("description"), 5000)
	input.Address = validators.SanitizeString(r.FormValue("address"), 500)
	input.City = validators.SanitizeString(r.FormValue("city"), 100)
	input.State = validators.SanitizeString(r.FormValue("state"), 100)
	input.PinCode = validators.SanitizeString(r.FormValue("pin_code"), 10)
	input.Comments = validators.SanitizeString(r.FormValue("comments"), 5000)
	input.AdditionalDetails = strings.TrimSpace(r.FormValue("additional_details"))

	var err error
	if input.WarehouseType, err = parseEnumField(r.FormValue("warehouse_type"), "warehouse_type", enums.ParseWarehouseType); err != nil {
		return input, nil, nil, err
	}
	if input.OwnershipType, err = parseEnumField(r.FormValue("ownership_type"), "ownership_type", enums.ParseOwnershipType); err != nil {
		return input, nil, nil, err
	}
	if input.ListingFor, err = parseEnumField(r.FormValue("listing_for"), "listing_for", enums.ParseListingFor); err != nil {
		return input, nil, nil, err
	}
	if input.PlotStatus, err = parseEnumField(r.FormValue("plot_status"), "plot_status", enums.ParsePlotStatus); err != nil {
		return input, nil, nil, err
	}
	if input.FloorPlans, err = parseEnumField(r.FormValue("floor_plans"), "floor_plans", enums.ParseFloorPlan); err != nil {
		return input, nil, nil, err
	}

	if input.BuildUpArea, err = parseFloatField(r.FormValue("build_up_area"), "build_up_area"); err != nil {
		return input, nil, nil, err
	}
	if input.PlotArea, err = parseFloatField(r.FormValue("plot_area"), "plot_area"); err != nil {
		return input, nil, nil, err
	}
	if input.TotalParkingArea, err = parseFloatField(r.FormValue("total_parking_area"), "total_parking_area"); err != nil {
		return input, nil, nil, err
	}
	if input.PlinthHeight, err = parseFloatField(r.FormValue("plinth_height"), "plinth_height"); err != nil {
		return input, nil, nil, err
	}
	if input.DockDoors, err = parseIntField(r.FormValue("dock_doors"), "dock_doors"); err != nil {
		return input, nil, nil, err
	}
	if input.ElectricityKVA, err = parseFloatField(r.FormValue("electricity_kva"), "electricity_kva"); err != nil {
		return input, nil, nil, err
	}
	if input.Rent, err = parseFloatField(r.FormValue("rent"), "rent"); err != nil {
		return input, nil, nil, err
	}
	if input.Deposit, err = parseFloatField(r.FormValue("deposit"), "deposit"); err != nil {
		return input, nil, nil, err
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["images"]
	}

	keep := keepImagesFromForm(r)

	return input, files, keep, nil
}

// keepImagesFromForm accepts both repeated keep_images fields and a single
// comma-joined value.
func keepImagesFromForm(r *http.Request) []string {
	if r.MultipartForm == nil {
		return nil
	}
	var keep []string
	for _, raw := range r.MultipartForm.Value["keep_images"] {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				keep = append(keep, trimmed)
			}
		}
	}
	return keep
}

func parseEnumField[T any](raw, field string, parse func(string) (T, error)) (T, error) {
	var zero T
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return zero, nil
	}
	value, err := parse(raw)
	if err != nil {
		return zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return value, nil
}

func parseFloatField(raw, field string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "field must be numeric").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

func parseIntField(raw, field string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "field must be an integer").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

// firstQueryValue returns the first non-empty value among the param aliases.
// The exact-match filters accept snake_case with the camelCase spelling kept
// as a fallback.
func firstQueryValue(query url.Values, keys ...string) string {
	for _, k := range keys {
		if v := query.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// listQueryFromRequest maps the shared filter query string onto a ListQuery.
func listQueryFromRequest(r *http.Request, audience warehousesvc.Audience, actorID string, isAdmin bool) warehousesvc.ListQuery {
	query := r.URL.Query()

	q := warehousesvc.ListQuery{
		Audience: audience,
		ActorID:  actorID,
		IsAdmin:  isAdmin,

		Status:  validators.SanitizeString(query.Get("status"), 20),
		ShowAll: strings.EqualFold(query.Get("showAll"), "true"),

		Search:   validators.SanitizeString(query.Get("search"), 200),
		Location: validators.SanitizeString(query.Get("location"), 200),
		City:     validators.SanitizeString(query.Get("city"), 100),
		State:    validators.SanitizeString(query.Get("state"), 100),

		WarehouseType: validators.SanitizeString(firstQueryValue(query, "warehouse_type", "warehouseType"), 100),
		OwnershipType: validators.SanitizeString(firstQueryValue(query, "ownership_type", "ownershipType"), 100),
		ListingFor:    validators.SanitizeString(firstQueryValue(query, "listing_for", "listingFor"), 100),
		PlotStatus:    validators.SanitizeString(firstQueryValue(query, "plot_status", "plotStatus"), 100),

		SizeRange:   validators.SanitizeString(query.Get("sizeRange"), 50),
		BudgetRange: validators.SanitizeString(query.Get("budgetRange"), 50),

		SortBy:    validators.SanitizeString(query.Get("sortBy"), 30),
		SortOrder: validators.SanitizeString(query.Get("sortOrder"), 10),

		Page: pagination.FromRequest(r),
	}

	if v, err := strconv.ParseFloat(query.Get("minArea"), 64); err == nil {
		q.MinArea = &v
	}
	if v, err := strconv.ParseFloat(query.Get("maxArea"), 64); err == nil {
		q.MaxArea = &v
	}

	return q
}
