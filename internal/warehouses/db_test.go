package warehouse

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/db/models"
)

var testDBSeq atomic.Int64

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:warehouse_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
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

	err = conn.AutoMigrate(
		&models.User{},
		&models.Warehouse{},
		&models.WarehouseApproval{},
		&models.WarehouseAnalytics{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return conn
}
