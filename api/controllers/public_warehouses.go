package controllers

import (
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vijayg-dev/warehouse-listing-backend/api/responses"
	"github.com/vijayg-dev/warehouse-listing-backend/api/validators"
	"github.com/vijayg-dev/warehouse-listing-backend/internal/analytics"
	warehousesvc "github.com/vijayg-dev/warehouse-listing-backend/internal/warehouses"
	pkgerrors "github.com/vijayg-dev/warehouse-listing-backend/pkg/errors"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/logger"
)

const visitorIDHeader = "X-Visitor-Id"

// PublicListWarehouses serves the anonymous marketplace view.
func PublicListWarehouses(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		q := listQueryFromRequest(r, warehousesvc.AudiencePublic, "", false)

		result, err := svc.List(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func PublicGetWarehouse(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		listing, err := svc.PublicGet(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listing)
	}
}

func PublicWarehouseStats(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		stats, err := svc.PublicStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

func FeaturedWarehouses(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 20)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listings, err := svc.Featured(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listings)
	}
}

// TrackWarehouseView records one anonymous view. The visitor identity comes
// from the X-Visitor-Id header when the frontend sends one, otherwise the
// client address stands in.
func TrackWarehouseView(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "warehouseId"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing warehouse id"))
			return
		}

		visitorID := validators.SanitizeString(r.Header.Get(visitorIDHeader), 100)
		if visitorID == "" {
			visitorID = clientAddr(r)
		}

		if err := svc.TrackView(r.Context(), id, visitorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}

// CityAutocomplete suggests cities from approved listings for the search box.
func CityAutocomplete(svc warehousesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouse service unavailable"))
			return
		}

		prefix := validators.SanitizeString(r.URL.Query().Get("q"), 100)

		cities, err := svc.Cities(r.Context(), prefix)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"cities": cities})
	}
}

func clientAddr(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
