package warehouse

import (
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/enums"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/pagination"
)

// Audience selects the visibility baseline applied before any caller filter.
type Audience int

const (
	// AudiencePublic sees approved listings only.
	AudiencePublic Audience = iota
	// AudienceOwnerSelf is the "my listings" view, scoped to the actor.
	AudienceOwnerSelf
	// AudienceBrowse is the authenticated mixed view: own listings plus
	// everything approved, unless an admin widens it.
	AudienceBrowse
)

// ListQuery carries the audience, the actor and every optional predicate.
type ListQuery struct {
	Audience Audience
	ActorID  string
	IsAdmin  bool

	// Status is the explicit status filter. Admins may pass "all".
	Status  string
	ShowAll bool

	Search   string
	Location string
	City     string
	State    string

	WarehouseType string
	OwnershipType string
	ListingFor    string
	PlotStatus    string

	// SizeRange and BudgetRange accept "min,max" with either side blank.
	SizeRange   string
	BudgetRange string
	MinArea     *float64
	MaxArea     *float64

	SortBy    string
	SortOrder string

	Page pagination.Params
}

var sortColumns = map[string]string{
	"created_at":    "created_at",
	"updated_at":    "updated_at",
	"rent":          "rent",
	"build_up_area": "build_up_area",
	"views":         "views",
	"name":          "name",
}

// substring columns for the free-text search OR-group.
var searchColumns = []string{"name", "city", "state", "address", "description"}

// substring columns for the location OR-group.
var locationColumns = []string{"city", "state", "address"}

// apply folds the query into gorm predicates. Visibility first, then the
// caller's filters ANDed together. The search and location OR-groups stay
// separate groups so both must match when both are present.
func (q ListQuery) apply(tx *gorm.DB) *gorm.DB {
	tx = q.applyVisibility(tx)

	if group := substringGroup(tx, searchColumns, q.Search); group != nil {
		tx = tx.Where(group)
	}
	if group := substringGroup(tx, locationColumns, q.Location); group != nil {
		tx = tx.Where(group)
	}

	if city := strings.TrimSpace(q.City); city != "" {
		tx = tx.Where("LOWER(city) LIKE ?", contains(city))
	}
	if state := strings.TrimSpace(q.State); state != "" {
		tx = tx.Where("LOWER(state) LIKE ?", contains(state))
	}

	if q.WarehouseType != "" {
		tx = tx.Where("warehouse_type = ?", q.WarehouseType)
	}
	if q.OwnershipType != "" {
		tx = tx.Where("ownership_type = ?", q.OwnershipType)
	}
	if q.ListingFor != "" {
		tx = tx.Where("listing_for = ?", q.ListingFor)
	}
	if q.PlotStatus != "" {
		tx = tx.Where("plot_status = ?", q.PlotStatus)
	}

	tx = applyRange(tx, "build_up_area", q.SizeRange)
	tx = applyRange(tx, "rent", q.BudgetRange)
	if q.MinArea != nil {
		tx = tx.Where("build_up_area >= ?", *q.MinArea)
	}
	if q.MaxArea != nil {
		tx = tx.Where("build_up_area <= ?", *q.MaxArea)
	}

	return tx
}

func (q ListQuery) applyVisibility(tx *gorm.DB) *gorm.DB {
	switch q.Audience {
	case AudiencePublic:
		return tx.Where("status = ?", enums.ApprovalApproved)

	case AudienceOwnerSelf:
		tx = tx.Where("owner_id = ?", q.ActorID)
		if status, ok := q.explicitStatus(); ok {
			return tx.Where("status = ?", status)
		}
		// Without an explicit filter the view hides fresh submissions.
		return tx.Where("status IN ?", []enums.ApprovalStatus{
			enums.ApprovalApproved, enums.ApprovalRejected,
		})

	default: // AudienceBrowse
		if q.IsAdmin {
			if q.ShowAll || strings.EqualFold(q.Status, "all") {
				return tx
			}
			if status, ok := q.explicitStatus(); ok {
				return tx.Where("status = ?", status)
			}
		}
		return tx.Where("owner_id = ? OR status = ?", q.ActorID, enums.ApprovalApproved)
	}
}

func (q ListQuery) explicitStatus() (enums.ApprovalStatus, bool) {
	status, err := enums.ParseApprovalStatus(strings.TrimSpace(q.Status))
	if err != nil {
		return "", false
	}
	return status, true
}

func (q ListQuery) orderClause() string {
	column, ok := sortColumns[strings.TrimSpace(q.SortBy)]
	if !ok {
		return "created_at DESC"
	}
	direction := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// substringGroup builds the OR-combined case-insensitive match over columns.
// Returns nil when the term is blank.
func substringGroup(tx *gorm.DB, columns []string, term string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	pattern := contains(term)

	session := tx.Session(&gorm.Session{NewDB: true})
	group := session.Where("LOWER("+columns[0]+") LIKE ?", pattern)
	for _, col := range columns[1:] {
		group = group.Or("LOWER("+col+") LIKE ?", pattern)
	}
	return group
}

func contains(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}

// applyRange parses "min,max" and adds the bounds that parse cleanly.
func applyRange(tx *gorm.DB, column, raw string) *gorm.DB {
	low, high, ok := parseRange(raw)
	if !ok {
		return tx
	}
	if low != nil {
		tx = tx.Where(column+" >= ?", *low)
	}
	if high != nil {
		tx = tx.Where(column+" <= ?", *high)
	}
	return tx
}

func parseRange(raw string) (low, high *float64, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, false
	}
	parts := strings.SplitN(raw, ",", 2)

	if v, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err == nil {
		low = &v
	}
	if len(parts) == 2 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err == nil {
			high = &v
		}
	}
	return low, high, low != nil || high != nil
}
