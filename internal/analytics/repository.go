// Package analytics tracks listing views and serves period aggregates for the
// admin dashboard.
package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// RecordView upserts the per-listing daily row, bumping views and optionally
// the unique visitor counter.
func (r *Repository) RecordView(ctx context.Context, warehouseID string, day time.Time, uniqueVisitor bool) error {
	day = day.UTC().Truncate(24 * time.Hour)

	uniqueDelta := int64(0)
	if uniqueVisitor {
		uniqueDelta = 1
	}

	row := models.WarehouseAnalytics{
		WarehouseID:    warehouseID,
		Day:            day,
		Views:          1,
		UniqueVisitors: uniqueDelta,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "warehouse_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{
			"views":           gorm.Expr("views + 1"),
			"unique_visitors": gorm.Expr("unique_visitors + ?", uniqueDelta),
			"updated_at":      time.Now(),
		}),
	}).Create(&row).Error
}

// DailyTotal is one day of aggregated traffic.
type DailyTotal struct {
	Day            time.Time `json:"day"`
	Views          int64     `json:"views"`
	UniqueVisitors int64     `json:"unique_visitors"`
}

// TotalsSince aggregates traffic per day from the cutoff forward.
func (r *Repository) TotalsSince(ctx context.Context, since time.Time) ([]DailyTotal, error) {
	var rows []DailyTotal
	err := r.db.WithContext(ctx).
		Model(&models.WarehouseAnalytics{}).
		Where("day >= ?", since.UTC().Truncate(24*time.Hour)).
		Select("day, SUM(views) AS views, SUM(unique_visitors) AS unique_visitors").
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListingTotal aggregates one listing's traffic over a window.
type ListingTotal struct {
	WarehouseID    string `json:"warehouse_id"`
	Views          int64  `json:"views"`
	UniqueVisitors int64  `json:"unique_visitors"`
}

// TopListingsSince returns the most viewed listings from the cutoff forward.
func (r *Repository) TopListingsSince(ctx context.Context, since time.Time, limit int) ([]ListingTotal, error) {
	var rows []ListingTotal
	err := r.db.WithContext(ctx).
		Model(&models.WarehouseAnalytics{}).
		Where("day >= ?", since.UTC().Truncate(24*time.Hour)).
		Select("warehouse_id, SUM(views) AS views, SUM(unique_visitors) AS unique_visitors").
		Group("warehouse_id").
		Order("views DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
