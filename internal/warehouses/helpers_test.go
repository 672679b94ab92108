package warehouse

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	user "github.com/vijayg-dev/warehouse-listing-backend/internal/users"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/db"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/db/models"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/enums"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/images"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/logger"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/storage"
)

func mustCreateTestUser(t *testing.T, tx *gorm.DB, role enums.UserRole) *models.User {
	t.Helper()
	account := &models.User{
		ID:           uuid.NewString(),
		Name:         "Listing Tester",
		Email:        fmt.Sprintf("wl_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Role:         role,
		IsActive:     true,
	}
	if err := tx.Create(account).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return account
}

func validCreateInput(name string) CreateInput {
	return CreateInput{
		Name:          name,
		MobileNumber:  "9876543210",
		Email:         "owner@example.com",
		Description:   "Dry storage near the highway",
		Address:       "Plot 12, MIDC Area",
		City:          "Pune",
		State:         "Maharashtra",
		PinCode:       "411001",
		WarehouseType: enums.WarehouseTypeGeneral,
		OwnershipType: enums.OwnershipOwner,
		ListingFor:    enums.ListingForRent,
		PlotStatus:    enums.PlotIndustrial,
		BuildUpArea:   1200,
		Rent:          50000,
	}
}

func mustCreateTestWarehouse(t *testing.T, tx *gorm.DB, ownerID string, status enums.ApprovalStatus, mutate func(*models.Warehouse)) *models.Warehouse {
	t.Helper()
	wh := validCreateInput("Warehouse " + uuid.NewString()).toModel()
	wh.OwnerID = ownerID
	wh.Status = status
	if mutate != nil {
		mutate(wh)
	}
	if err := tx.Create(wh).Error; err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	approval := &models.WarehouseApproval{
		WarehouseID: wh.ID,
		Status:      status,
	}
	if err := tx.Create(approval).Error; err != nil {
		t.Fatalf("create approval: %v", err)
	}
	return wh
}

type stubFileStore struct {
	mu      sync.Mutex
	saved   []string
	removed []string
	failOn  string
}

func (s *stubFileStore) Save(_ context.Context, fh *multipart.FileHeader) (*storage.SavedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && fh.Filename == s.failOn {
		return nil, fmt.Errorf("disk full")
	}
	path := "uploads/" + fh.Filename
	s.saved = append(s.saved, path)
	return &storage.SavedFile{Path: path, Size: fh.Size, MIME: "image/jpeg"}, nil
}

func (s *stubFileStore) Remove(_ context.Context, paths ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, paths...)
	return nil
}

type stubNotifier struct {
	mu       sync.Mutex
	approved []string
	rejected []string
}

func (n *stubNotifier) NotifyApproved(_ context.Context, to, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approved = append(n.approved, to)
	return nil
}

func (n *stubNotifier) NotifyRejected(_ context.Context, to, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejected = append(n.rejected, to)
	return nil
}

func (n *stubNotifier) waitForDelivery(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		n.mu.Lock()
		delivered := len(n.approved)+len(n.rejected) > 0
		n.mu.Unlock()
		if delivered {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("notification was never delivered")
}

type serviceFixture struct {
	svc      Service
	conn     *gorm.DB
	files    *stubFileStore
	notifier *stubNotifier
}

const testImageBase = "https://cdn.example.com"

func newTestService(t *testing.T) *serviceFixture {
	t.Helper()

	conn := openTestDB(t)
	files := &stubFileStore{}
	notifier := &stubNotifier{}
	logg := logger.New(logger.Options{ServiceName: "warehouse-test", Level: zerolog.ErrorLevel})

	svc, err := NewService(
		NewRepository(conn),
		db.NewWithConn(conn),
		user.NewRepository(conn),
		files,
		notifier,
		images.NewResolver(testImageBase),
		nil,
		0,
		5,
		logg,
	)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return &serviceFixture{svc: svc, conn: conn, files: files, notifier: notifier}
}

func mustDay(t *testing.T) time.Time {
	t.Helper()
	return time.Now().UTC().Truncate(24 * time.Hour)
}

func fileHeaders(names ...string) []*multipart.FileHeader {
	out := make([]*multipart.FileHeader, 0, len(names))
	for _, n := range names {
		out = append(out, &multipart.FileHeader{Filename: n, Size: 1024})
	}
	return out
}
