package analytics

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	warehouse "github.com/vijayg-dev/warehouse-listing-backend/internal/warehouses"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/db/models"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/enums"
	pkgerrors "github.com/vijayg-dev/warehouse-listing-backend/pkg/errors"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/logger"
)

var testDBSeq atomic.Int64

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:analytics_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = conn.AutoMigrate(&models.User{}, &models.Warehouse{}, &models.WarehouseAnalytics{})
	if err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return conn
}

type fakeVisitors struct {
	seen map[string]bool
}

func (f *fakeVisitors) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeVisitors) VisitorKey(warehouseID, visitorID, day string) string {
	return warehouseID + ":" + visitorID + ":" + day
}

func seedListing(t *testing.T, conn *gorm.DB, status enums.ApprovalStatus) *models.Warehouse {
	t.Helper()
	owner := &models.User{
		Name:         "Analytics Tester",
		Email:        fmt.Sprintf("wl_analytics_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
	}
	require.NoError(t, conn.Create(owner).Error)

	wh := &models.Warehouse{
		OwnerID:       owner.ID,
		Name:          "Analytics Warehouse " + uuid.NewString(),
		MobileNumber:  "9876543210",
		Email:         "owner@example.com",
		Address:       "Plot 5",
		City:          "Pune",
		State:         "Maharashtra",
		PinCode:       "411001",
		WarehouseType: enums.WarehouseTypeGeneral,
		OwnershipType: enums.OwnershipOwner,
		BuildUpArea:   900,
		Status:        status,
	}
	require.NoError(t, conn.Create(wh).Error)
	return wh
}

func newTestService(t *testing.T, conn *gorm.DB, visitors visitorMarker) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "analytics-test", Level: zerolog.ErrorLevel})
	svc, err := NewService(NewRepository(conn), warehouse.NewRepository(conn), visitors, logg)
	require.NoError(t, err)
	return svc
}

func TestTrackViewCountsAndDeduplicatesVisitors(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn, &fakeVisitors{})
	wh := seedListing(t, conn, enums.ApprovalApproved)

	ctx := context.Background()
	require.NoError(t, svc.TrackView(ctx, wh.ID, "visitor-a"))
	require.NoError(t, svc.TrackView(ctx, wh.ID, "visitor-a"))
	require.NoError(t, svc.TrackView(ctx, wh.ID, "visitor-b"))

	var updated models.Warehouse
	require.NoError(t, conn.First(&updated, "id = ?", wh.ID).Error)
	assert.Equal(t, int64(3), updated.Views)

	var row models.WarehouseAnalytics
	require.NoError(t, conn.First(&row, "warehouse_id = ?", wh.ID).Error)
	assert.Equal(t, int64(3), row.Views)
	assert.Equal(t, int64(2), row.UniqueVisitors)
}

func TestTrackViewRejectsUnapprovedListing(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn, &fakeVisitors{})
	wh := seedListing(t, conn, enums.ApprovalPending)

	err := svc.TrackView(context.Background(), wh.ID, "visitor-a")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestTrackViewWithoutVisitorStore(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn, nil)
	wh := seedListing(t, conn, enums.ApprovalApproved)

	require.NoError(t, svc.TrackView(context.Background(), wh.ID, "visitor-a"))

	var row models.WarehouseAnalytics
	require.NoError(t, conn.First(&row, "warehouse_id = ?", wh.ID).Error)
	assert.Equal(t, int64(1), row.Views)
	assert.Zero(t, row.UniqueVisitors)
}

func TestPeriodStatsAggregatesWindow(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn, &fakeVisitors{})
	wh := seedListing(t, conn, enums.ApprovalApproved)
	repo := NewRepository(conn)

	ctx := context.Background()
	require.NoError(t, repo.RecordView(ctx, wh.ID, time.Now(), true))
	require.NoError(t, repo.RecordView(ctx, wh.ID, time.Now(), false))
	// Outside every window.
	require.NoError(t, repo.RecordView(ctx, wh.ID, time.Now().AddDate(0, 0, -120), true))

	stats, err := svc.PeriodStats(ctx, "7d")
	require.NoError(t, err)

	assert.Equal(t, "7d", stats.Period)
	assert.Equal(t, int64(2), stats.TotalViews)
	assert.Equal(t, int64(1), stats.UniqueVisitors)
	require.Len(t, stats.TopListings, 1)
	assert.Equal(t, wh.ID, stats.TopListings[0].WarehouseID)
}

func TestPeriodStatsRejectsUnknownPeriod(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn, nil)

	_, err := svc.PeriodStats(context.Background(), "365d")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
