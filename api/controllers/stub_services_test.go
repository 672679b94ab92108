package controllers

import (
	"context"
	"mime/multipart"

	"github.com/vijayg-dev/warehouse-listing-backend/internal/analytics"
	warehousesvc "github.com/vijayg-dev/warehouse-listing-backend/internal/warehouses"
)

// stubWarehouseService lets each test override just the calls it cares about.
type stubWarehouseService struct {
	createFn      func(ctx context.Context, ownerID string, input warehousesvc.CreateInput, files []*multipart.FileHeader) (*warehousesvc.WarehouseDTO, error)
	updateFn      func(ctx context.Context, actorID, id string, input warehousesvc.UpdateInput, files []*multipart.FileHeader) (*warehousesvc.WarehouseDTO, error)
	deleteFn      func(ctx context.Context, actorID string, isAdmin bool, id string) error
	getFn         func(ctx context.Context, actorID string, isAdmin bool, id string) (*warehousesvc.WarehouseDTO, error)
	listFn        func(ctx context.Context, q warehousesvc.ListQuery) (*warehousesvc.ListResult, error)
	ownerStatsFn  func(ctx context.Context, ownerID string) (*warehousesvc.OwnerStatsDTO, error)
	approveFn     func(ctx context.Context, adminID, id, comment string) (*warehousesvc.WarehouseDTO, error)
	rejectFn      func(ctx context.Context, adminID, id, comment string) (*warehousesvc.WarehouseDTO, error)
	adminUpdateFn func(ctx context.Context, id string, input warehousesvc.CreateInput) (*warehousesvc.WarehouseDTO, error)
	dashboardFn   func(ctx context.Context) (*warehousesvc.DashboardStatsDTO, error)
	publicGetFn   func(ctx context.Context, id string) (*warehousesvc.WarehouseDTO, error)
	publicStatsFn func(ctx context.Context) (*warehousesvc.PublicStatsDTO, error)
	featuredFn    func(ctx context.Context, limit int) ([]warehousesvc.WarehouseDTO, error)
	citiesFn      func(ctx context.Context, prefix string) ([]string, error)
}

func (s *stubWarehouseService) Create(ctx context.Context, ownerID string, input warehousesvc.CreateInput, files []*multipart.FileHeader) (*warehousesvc.WarehouseDTO, error) {
	if s.createFn == nil {
		return &warehousesvc.WarehouseDTO{}, nil
	}
	return s.createFn(ctx, ownerID, input, files)
}

func (s *stubWarehouseService) Update(ctx context.Context, actorID, id string, input warehousesvc.UpdateInput, files []*multipart.FileHeader) (*warehousesvc.WarehouseDTO, error) {
	if s.updateFn == nil {
		return &warehousesvc.WarehouseDTO{}, nil
	}
	return s.updateFn(ctx, actorID, id, input, files)
}

func (s *stubWarehouseService) Delete(ctx context.Context, actorID string, isAdmin bool, id string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, actorID, isAdmin, id)
}

func (s *stubWarehouseService) Get(ctx context.Context, actorID string, isAdmin bool, id string) (*warehousesvc.WarehouseDTO, error) {
	if s.getFn == nil {
		return &warehousesvc.WarehouseDTO{}, nil
	}
	return s.getFn(ctx, actorID, isAdmin, id)
}

func (s *stubWarehouseService) List(ctx context.Context, q warehousesvc.ListQuery) (*warehousesvc.ListResult, error) {
	if s.listFn == nil {
		return &warehousesvc.ListResult{Items: []warehousesvc.WarehouseDTO{}}, nil
	}
	return s.listFn(ctx, q)
}

func (s *stubWarehouseService) OwnerStats(ctx context.Context, ownerID string) (*warehousesvc.OwnerStatsDTO, error) {
	if s.ownerStatsFn == nil {
		return &warehousesvc.OwnerStatsDTO{}, nil
	}
	return s.ownerStatsFn(ctx, ownerID)
}

func (s *stubWarehouseService) Approve(ctx context.Context, adminID, id, comment string) (*warehousesvc.WarehouseDTO, error) {
	if s.approveFn == nil {
		return &warehousesvc.WarehouseDTO{}, nil
	}
	return s.approveFn(ctx, adminID, id, comment)
}

func (s *stubWarehouseService) Reject(ctx context.Context, adminID, id, comment string) (*warehousesvc.WarehouseDTO, error) {
	if s.rejectFn == nil {
		return &warehousesvc.WarehouseDTO{}, nil
	}
	return s.rejectFn(ctx, adminID, id, comment)
}

func (s *stubWarehouseService) AdminUpdate(ctx context.Context, id string, input warehousesvc.CreateInput) (*warehousesvc.WarehouseDTO, error) {
	if s.adminUpdateFn == nil {
		return &warehousesvc.WarehouseDTO{}, nil
	}
	return s.adminUpdateFn(ctx, id, input)
}

func (s *stubWarehouseService) DashboardStats(ctx context.Context) (*warehousesvc.DashboardStatsDTO, error) {
	if s.dashboardFn == nil {
		return &warehousesvc.DashboardStatsDTO{}, nil
	}
	return s.dashboardFn(ctx)
}

func (s *stubWarehouseService) PublicGet(ctx context.Context, id string) (*warehousesvc.WarehouseDTO, error) {
	if s.publicGetFn == nil {
		return &warehousesvc.WarehouseDTO{}, nil
	}
	return s.publicGetFn(ctx, id)
}

func (s *stubWarehouseService) PublicStats(ctx context.Context) (*warehousesvc.PublicStatsDTO, error) {
	if s.publicStatsFn == nil {
		return &warehousesvc.PublicStatsDTO{}, nil
	}
	return s.publicStatsFn(ctx)
}

func (s *stubWarehouseService) Featured(ctx context.Context, limit int) ([]warehousesvc.WarehouseDTO, error) {
	if s.featuredFn == nil {
		return []warehousesvc.WarehouseDTO{}, nil
	}
	return s.featuredFn(ctx, limit)
}

func (s *stubWarehouseService) Cities(ctx context.Context, prefix string) ([]string, error) {
	if s.citiesFn == nil {
		return []string{}, nil
	}
	return s.citiesFn(ctx, prefix)
}

var _ warehousesvc.Service = (*stubWarehouseService)(nil)

type stubAnalyticsService struct {
	trackFn func(ctx context.Context, warehouseID, visitorID string) error
	statsFn func(ctx context.Context, period string) (*analytics.PeriodStatsDTO, error)
}

func (s *stubAnalyticsService) TrackView(ctx context.Context, warehouseID, visitorID string) error {
	if s.trackFn == nil {
		return nil
	}
	return s.trackFn(ctx, warehouseID, visitorID)
}

func (s *stubAnalyticsService) PeriodStats(ctx context.Context, period string) (*analytics.PeriodStatsDTO, error) {
	if s.statsFn == nil {
		return &analytics.PeriodStatsDTO{}, nil
	}
	return s.statsFn(ctx, period)
}

var _ analytics.Service = (*stubAnalyticsService)(nil)
