package routes

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vijayg-dev/warehouse-listing-backend/api/controllers"
	"github.com/vijayg-dev/warehouse-listing-backend/api/middleware"
	"github.com/vijayg-dev/warehouse-listing-backend/internal/analytics"
	warehousesvc "github.com/vijayg-dev/warehouse-listing-backend/internal/warehouses"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/config"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/enums"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/logger"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/metrics"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Accounts middleware.AccountChecker

	Warehouses warehousesvc.Service
	Analytics  analytics.Service

	Registry *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	var httpMetrics *metrics.HTTPMetrics
	if deps.Registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(deps.Registry)
	}

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	if dir := deps.Config.Uploads.Dir; dir != "" {
		prefix := "/" + filepath.Base(dir)
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
		r.Method(http.MethodGet, prefix+"/*", fs)
	}

	r.Route("/api/public/warehouses", func(r chi.Router) {
		r.Get("/", controllers.PublicListWarehouses(deps.Warehouses, deps.Logger))
		r.Get("/stats", controllers.PublicWarehouseStats(deps.Warehouses, deps.Logger))
		r.Get("/featured", controllers.FeaturedWarehouses(deps.Warehouses, deps.Logger))
		r.Get("/{warehouseId}", controllers.PublicGetWarehouse(deps.Warehouses, deps.Logger))
		r.Post("/{warehouseId}/view", controllers.TrackWarehouseView(deps.Analytics, deps.Logger))
	})

	r.Get("/api/cities", controllers.CityAutocomplete(deps.Warehouses, deps.Logger))

	r.Route("/api/warehouses", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.JWT, deps.Accounts, deps.Logger))

		r.Get("/", controllers.ListWarehouses(deps.Warehouses, deps.Logger))
		r.Post("/", controllers.CreateWarehouse(deps.Warehouses, deps.Logger))
		r.Get("/my", controllers.MyWarehouses(deps.Warehouses, deps.Logger))
		r.Get("/stats", controllers.OwnerWarehouseStats(deps.Warehouses, deps.Logger))
		r.Get("/{warehouseId}", controllers.GetWarehouse(deps.Warehouses, deps.Logger))
		r.Put("/{warehouseId}", controllers.UpdateWarehouse(deps.Warehouses, deps.Logger))
		r.Delete("/{warehouseId}", controllers.DeleteWarehouse(deps.Warehouses, deps.Logger))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.JWT, deps.Accounts, deps.Logger))
		r.Use(middleware.RequireRole(string(enums.RoleAdmin), deps.Logger))

		r.Route("/warehouses", func(r chi.Router) {
			r.Get("/", controllers.AdminListWarehouses(deps.Warehouses, deps.Logger))
			r.Get("/pending", controllers.AdminPendingWarehouses(deps.Warehouses, deps.Logger))
			r.Get("/analytics", controllers.AdminAnalytics(deps.Analytics, deps.Logger))
			r.Get("/{warehouseId}", controllers.AdminGetWarehouse(deps.Warehouses, deps.Logger))
			r.Post("/{warehouseId}/approve", controllers.AdminApproveWarehouse(deps.Warehouses, deps.Logger))
			r.Post("/{warehouseId}/reject", controllers.AdminRejectWarehouse(deps.Warehouses, deps.Logger))
			r.Put("/{warehouseId}", controllers.AdminUpdateWarehouse(deps.Warehouses, deps.Logger))
			r.Delete("/{warehouseId}", controllers.DeleteWarehouse(deps.Warehouses, deps.Logger))
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/dashboard", controllers.AdminDashboardStats(deps.Warehouses, deps.Logger))
			r.Get("/analytics", controllers.AdminAnalytics(deps.Analytics, deps.Logger))
		})
	})

	return r
}
