package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWarehousesMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_warehouses_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no warehouses migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS warehouses",
		"FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE SET NULL",
		"CHECK (build_up_area > 0)",
		"CHECK (status IN ('pending', 'approved', 'rejected'))",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_warehouses_name_address",
		"DROP TABLE IF EXISTS warehouses",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestApprovalsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_warehouse_approvals_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no approvals migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS warehouse_approvals",
		"FOREIGN KEY (warehouse_id) REFERENCES warehouses(id) ON DELETE CASCADE",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_warehouse_approvals_warehouse",
		"DROP TABLE IF EXISTS warehouse_approvals",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
