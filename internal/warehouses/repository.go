package warehouse

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/db/models"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/enums"
)

// Repository wires together listing, approval and analytics persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the listing without associations.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.Warehouse, error) {
	var wh models.Warehouse
	if err := r.db.WithContext(ctx).First(&wh, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &wh, nil
}

// FindDuplicate looks for another listing with the same trimmed name+address
// pair. excludeID skips the listing being edited.
func (r *Repository) FindDuplicate(ctx context.Context, name, address, excludeID string) (*models.Warehouse, error) {
	tx := r.db.WithContext(ctx).
		Where("name = ? AND address = ?", strings.TrimSpace(name), strings.TrimSpace(address))
	if excludeID != "" {
		tx = tx.Where("id <> ?", excludeID)
	}

	var wh models.Warehouse
	err := tx.First(&wh).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &wh, nil
}

// Create inserts a new listing row.
func (r *Repository) Create(ctx context.Context, wh *models.Warehouse) error {
	return r.db.WithContext(ctx).Create(wh).Error
}

// Save persists every field of an existing listing row.
func (r *Repository) Save(ctx context.Context, wh *models.Warehouse) error {
	return r.db.WithContext(ctx).Save(wh).Error
}

// Delete removes a listing by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Warehouse{}).Error
}

// UpdateStatusGuarded moves the listing into status only when the row still
// carries the captured version. Returns the number of rows touched; zero means
// a concurrent edit won.
func (r *Repository) UpdateStatusGuarded(ctx context.Context, id string, version int64, status enums.ApprovalStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Warehouse{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]any{
			"status":  status,
			"version": version + 1,
		})
	return res.RowsAffected, res.Error
}

// IncrementViews bumps the denormalized view counter.
func (r *Repository) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.Warehouse{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// List runs the filter engine and returns one page plus the total row count.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]models.Warehouse, int64, error) {
	base := q.apply(r.db.WithContext(ctx).Model(&models.Warehouse{}))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Warehouse
	err := base.
		Order(q.orderClause()).
		Limit(q.Page.Limit).
		Offset(q.Page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Featured returns the most viewed approved listings, newest first on ties.
func (r *Repository) Featured(ctx context.Context, limit int) ([]models.Warehouse, error) {
	var rows []models.Warehouse
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.ApprovalApproved).
		Order("views DESC, created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Cities returns distinct approved-listing cities matching the prefix.
func (r *Repository) Cities(ctx context.Context, prefix string, limit int) ([]string, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Warehouse{}).
		Where("status = ?", enums.ApprovalApproved)
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		tx = tx.Where("LOWER(city) LIKE ?", strings.ToLower(prefix)+"%")
	}

	var cities []string
	err := tx.Distinct("city").Order("city ASC").Limit(limit).Pluck("city", &cities).Error
	if err != nil {
		return nil, err
	}
	return cities, nil
}

// CreateApproval inserts the paired moderation ticket.
func (r *Repository) CreateApproval(ctx context.Context, approval *models.WarehouseApproval) error {
	return r.db.WithContext(ctx).Create(approval).Error
}

// FindApprovalByWarehouse loads the moderation ticket for a listing.
func (r *Repository) FindApprovalByWarehouse(ctx context.Context, warehouseID string) (*models.WarehouseApproval, error) {
	var approval models.WarehouseApproval
	if err := r.db.WithContext(ctx).First(&approval, "warehouse_id = ?", warehouseID).Error; err != nil {
		return nil, err
	}
	return &approval, nil
}

// SaveApproval persists the moderation ticket.
func (r *Repository) SaveApproval(ctx context.Context, approval *models.WarehouseApproval) error {
	return r.db.WithContext(ctx).Save(approval).Error
}

// DeleteApprovalByWarehouse removes the paired ticket.
func (r *Repository) DeleteApprovalByWarehouse(ctx context.Context, warehouseID string) error {
	return r.db.WithContext(ctx).
		Where("warehouse_id = ?", warehouseID).
		Delete(&models.WarehouseApproval{}).Error
}

// DeleteAnalyticsByWarehouse removes the listing's analytics rows.
func (r *Repository) DeleteAnalyticsByWarehouse(ctx context.Context, warehouseID string) error {
	return r.db.WithContext(ctx).
		Where("warehouse_id = ?", warehouseID).
		Delete(&models.WarehouseAnalytics{}).Error
}

// StatusCount is one bucket of the per-status aggregate.
type StatusCount struct {
	Status enums.ApprovalStatus
	Count  int64
}

// CountByStatus aggregates listings per status, optionally scoped to an owner.
func (r *Repository) CountByStatus(ctx context.Context, ownerID string) (map[enums.ApprovalStatus]int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.Warehouse{})
	if ownerID != "" {
		tx = tx.Where("owner_id = ?", ownerID)
	}

	var buckets []StatusCount
	if err := tx.Select("status, COUNT(*) AS count").Group("status").Scan(&buckets).Error; err != nil {
		return nil, err
	}

	out := make(map[enums.ApprovalStatus]int64, len(buckets))
	for _, b := range buckets {
		out[b.Status] = b.Count
	}
	return out, nil
}

// CountCreatedSince counts listings created at or after the cutoff, optionally
// scoped to an owner.
func (r *Repository) CountCreatedSince(ctx context.Context, ownerID string, since time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.Warehouse{}).Where("created_at >= ?", since)
	if ownerID != "" {
		tx = tx.Where("owner_id = ?", ownerID)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumViews totals the denormalized view counters, optionally per owner.
func (r *Repository) SumViews(ctx context.Context, ownerID string) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.Warehouse{})
	if ownerID != "" {
		tx = tx.Where("owner_id = ?", ownerID)
	}

	var total *int64
	if err := tx.Select("SUM(views)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// TypeCount is one bucket of the per-category aggregate.
type TypeCount struct {
	WarehouseType enums.WarehouseType `json:"warehouse_type"`
	Count         int64               `json:"count"`
}

// CountApprovedByType aggregates approved listings per category.
func (r *Repository) CountApprovedByType(ctx context.Context) ([]TypeCount, error) {
	var buckets []TypeCount
	err := r.db.WithContext(ctx).
		Model(&models.Warehouse{}).
		Where("status = ?", enums.ApprovalApproved).
		Select("warehouse_type, COUNT(*) AS count").
		Group("warehouse_type").
		Order("count DESC").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}
	return buckets, nil
}

// CityCount is one bucket of the per-city aggregate.
type CityCount struct {
	City  string `json:"city"`
	Count int64  `json:"count"`
}

// TopCities returns the cities with the most approved listings.
func (r *Repository) TopCities(ctx context.Context, limit int) ([]CityCount, error) {
	var buckets []CityCount
	err := r.db.WithContext(ctx).
		Model(&models.Warehouse{}).
		Where("status = ?", enums.ApprovalApproved).
		Select("city, COUNT(*) AS count").
		Group("city").
		Order("count DESC").
		Limit(limit).
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}
	return buckets, nil
}
