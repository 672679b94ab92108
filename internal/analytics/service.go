package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/db/models"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/enums"
	pkgerrors "github.com/vijayg-dev/warehouse-listing-backend/pkg/errors"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/logger"
)

const visitorTTL = 24 * time.Hour

// Service records view traffic and answers period queries.
type Service interface {
	TrackView(ctx context.Context, warehouseID, visitorID string) error
	PeriodStats(ctx context.Context, period string) (*PeriodStatsDTO, error)
}

// PeriodStatsDTO is the admin analytics block for one window.
type PeriodStatsDTO struct {
	Period         string         `json:"period"`
	TotalViews     int64          `json:"total_views"`
	UniqueVisitors int64          `json:"unique_visitors"`
	Daily          []DailyTotal   `json:"daily"`
	TopListings    []ListingTotal `json:"top_listings"`
}

type listingReader interface {
	FindByID(ctx context.Context, id string) (*models.Warehouse, error)
	IncrementViews(ctx context.Context, id string) error
}

type visitorMarker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	VisitorKey(warehouseID, visitorID, day string) string
}

type service struct {
	repo     *Repository
	listings listingReader
	visitors visitorMarker
	logg     *logger.Logger
}

// NewService constructs the analytics service. visitors may be nil; every view
// then counts as unique-unknown (unique counter untouched).
func NewService(repo *Repository, listings listingReader, visitors visitorMarker, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	if listings == nil {
		return nil, fmt.Errorf("listing reader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, listings: listings, visitors: visitors, logg: logg}, nil
}

func (s *service) TrackView(ctx context.Context, warehouseID, visitorID string) error {
	wh, err := s.listings.FindByID(ctx, warehouseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading listing")
	}
	if wh.Status != enums.ApprovalApproved {
		return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}

	unique := false
	if s.visitors != nil && strings.TrimSpace(visitorID) != "" {
		day := time.Now().UTC().Format("2006-01-02")
		key := s.visitors.VisitorKey(warehouseID, visitorID, day)
		first, err := s.visitors.SetNX(ctx, key, "1", visitorTTL)
		if err != nil {
			// Traffic counting should not fail because redis is down.
			s.logg.Warn(ctx, "marking unique visitor failed")
		} else {
			unique = first
		}
	}

	if err := s.listings.IncrementViews(ctx, warehouseID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "incrementing view counter")
	}
	if err := s.repo.RecordView(ctx, warehouseID, time.Now(), unique); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording view")
	}
	return nil
}

func (s *service) PeriodStats(ctx context.Context, period string) (*PeriodStatsDTO, error) {
	days, err := parsePeriod(period)
	if err != nil {
		return nil, err
	}
	since := time.Now().AddDate(0, 0, -days)

	daily, err := s.repo.TotalsSince(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating daily traffic")
	}
	top, err := s.repo.TopListingsSince(ctx, since, 5)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating top listings")
	}

	stats := &PeriodStatsDTO{
		Period:      period,
		Daily:       daily,
		TopListings: top,
	}
	for _, d := range daily {
		stats.TotalViews += d.Views
		stats.UniqueVisitors += d.UniqueVisitors
	}
	return stats, nil
}

func parsePeriod(period string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "", "7d":
		return 7, nil
	case "30d":
		return 30, nil
	case "90d":
		return 90, nil
	}
	return 0, pkgerrors.New(pkgerrors.CodeValidation, "period must be one of 7d, 30d, 90d")
}
