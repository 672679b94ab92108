package warehouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/db/models"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/enums"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/pagination"
)

func listIDs(t *testing.T, fx *serviceFixture, q ListQuery) []string {
	t.Helper()
	if q.Page.Limit == 0 {
		q.Page = pagination.Params{Page: 1, Limit: 50}
	}
	result, err := fx.svc.List(context.Background(), q)
	require.NoError(t, err)
	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestPublicAudienceOnlySeesApproved(t *testing.T) {
	fx := newTestService(t)
	owner := mustCreateTestUser(t, fx.conn, enums.RoleUser)
	approved := mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalApproved, nil)
	mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalPending, nil)
	mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalRejected, nil)

	ids := listIDs(t, fx, ListQuery{Audience: AudiencePublic})
	assert.Equal(t, []string{approved.ID}, ids)
}

func TestOwnerSelfDefaultHidesPending(t *testing.T) {
	fx := newTestService(t)
	owner := mustCreateTestUser(t, fx.conn, enums.RoleUser)
	other := mustCreateTestUser(t, fx.conn, enums.RoleUser)
	approved := mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalApproved, nil)
	rejected := mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalRejected, nil)
	pending := mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalPending, nil)
	mustCreateTestWarehouse(t, fx.conn, other.ID, enums.ApprovalApproved, nil)

	ids := listIDs(t, fx, ListQuery{Audience: AudienceOwnerSelf, ActorID: owner.ID})
	assert.ElementsMatch(t, []string{approved.ID, rejected.ID}, ids)

	// An explicit status filter overrides the default.
	ids = listIDs(t, fx, ListQuery{Audience: AudienceOwnerSelf, ActorID: owner.ID, Status: "pending"})
	assert.Equal(t, []string{pending.ID}, ids)
}

func TestBrowseMixesOwnAndApproved(t *testing.T) {
	fx := newTestService(t)
	owner := mustCreateTestUser(t, fx.conn, enums.RoleUser)
	other := mustCreateTestUser(t, fx.conn, enums.RoleUser)
	ownPending := mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalPending, nil)
	otherApproved := mustCreateTestWarehouse(t, fx.conn, other.ID, enums.ApprovalApproved, nil)
	mustCreateTestWarehouse(t, fx.conn, other.ID, enums.ApprovalPending, nil)

	ids := listIDs(t, fx, ListQuery{Audience: AudienceBrowse, ActorID: owner.ID})
	assert.ElementsMatch(t, []string{ownPending.ID, otherApproved.ID}, ids)
}

func TestAdminStatusFilterWidensBrowse(t *testing.T) {
	fx := newTestService(t)
	owner := mustCreateTestUser(t, fx.conn, enums.RoleUser)
	admin := mustCreateTestUser(t, fx.conn, enums.RoleAdmin)
	pending := mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalPending, nil)
	approved := mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalApproved, nil)
	rejected := mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalRejected, nil)

	ids := listIDs(t, fx, ListQuery{Audience: AudienceBrowse, ActorID: admin.ID, IsAdmin: true, Status: "pending"})
	assert.Equal(t, []string{pending.ID}, ids)

	ids = listIDs(t, fx, ListQuery{Audience: AudienceBrowse, ActorID: admin.ID, IsAdmin: true, Status: "all"})
	assert.ElementsMatch(t, []string{pending.ID, approved.ID, rejected.ID}, ids)

	// A non-admin cannot widen visibility with a status filter.
	ids = listIDs(t, fx, ListQuery{Audience: AudienceBrowse, ActorID: owner.ID, Status: "all"})
	assert.ElementsMatch(t, []string{pending.ID, approved.ID, rejected.ID}, ids, "owner sees own rows regardless")
}

func TestSearchMatchesAcrossColumns(t *testing.T) {
	fx := newTestService(t)
	owner := mustCreateTestUser(t, fx.conn, enums.RoleUser)
	byName := mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalApproved, func(w *models.Warehouse) {
		w.Name = "Logix Storage Hub"
	})
	byDescription := mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalApproved, func(w *models.Warehouse) {
		w.Description = "close to the logix expressway"
	})
	mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalApproved, nil)

	ids := listIDs(t, fx, ListQuery{Audience: AudiencePublic, Search: "LOGIX"})
	assert.ElementsMatch(t, []string{byName.ID, byDescription.ID}, ids)
}

func TestSearchAndLocationGroupsCombineWithAnd(t *testing.T) {
	fx := newTestService(t)
	owner := mustCreateTestUser(t, fx.conn, enums.RoleUser)

	match := mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalApproved, func(w *models.Warehouse) {
		w.Name = "Cold Chain Depot"
		w.City = "Nagpur"
	})
	// Matches search but not location.
	mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalApproved, func(w *models.Warehouse) {
		w.Name = "Cold Chain Annex"
		w.City = "Pune"
		w.State = "Maharashtra"
		w.Address = "Plot 9"
	})
	// Matches location but not search.
	mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalApproved, func(w *models.Warehouse) {
		w.Name = "Dry Goods Shed"
		w.City = "Nagpur"
	})

	ids := listIDs(t, fx, ListQuery{Audience: AudiencePublic, Search: "cold chain", Location: "nagpur"})
	assert.Equal(t, []string{match.ID}, ids)
}

func TestExactAndRangeFilters(t *testing.T) {
	fx := newTestService(t)
	owner := mustCreateTestUser(t, fx.conn, enums.RoleUser)

	match := mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalApproved, func(w *models.Warehouse) {
		w.WarehouseType = enums.WarehouseTypeClimate
		w.BuildUpArea = 2000
		w.Rent = 80000
	})
	mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalApproved, func(w *models.Warehouse) {
		w.WarehouseType = enums.WarehouseTypeClimate
		w.BuildUpArea = 500
		w.Rent = 80000
	})
	mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalApproved, func(w *models.Warehouse) {
		w.WarehouseType = enums.WarehouseTypeGeneral
		w.BuildUpArea = 2000
		w.Rent = 80000
	})

	ids := listIDs(t, fx, ListQuery{
		Audience:      AudiencePublic,
		WarehouseType: enums.WarehouseTypeClimate.String(),
		SizeRange:     "1000,5000",
		BudgetRange:   "50000,100000",
	})
	assert.Equal(t, []string{match.ID}, ids)
}

func TestRangeAcceptsOpenEnds(t *testing.T) {
	low, high, ok := parseRange("1000,")
	require.True(t, ok)
	require.NotNil(t, low)
	assert.Equal(t, float64(1000), *low)
	assert.Nil(t, high)

	low, high, ok = parseRange(",5000")
	require.True(t, ok)
	assert.Nil(t, low)
	require.NotNil(t, high)
	assert.Equal(t, float64(5000), *high)

	_, _, ok = parseRange("garbage")
	assert.False(t, ok)
}

func TestSortAllowListFallsBack(t *testing.T) {
	assert.Equal(t, "rent ASC", ListQuery{SortBy: "rent", SortOrder: "asc"}.orderClause())
	assert.Equal(t, "views DESC", ListQuery{SortBy: "views", SortOrder: "bogus"}.orderClause())
	assert.Equal(t, "created_at DESC", ListQuery{SortBy: "owner_id; DROP TABLE warehouses"}.orderClause())
	assert.Equal(t, "created_at DESC", ListQuery{}.orderClause())
}

func TestSortOrdersResults(t *testing.T) {
	fx := newTestService(t)
	owner := mustCreateTestUser(t, fx.conn, enums.RoleUser)
	cheap := mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalApproved, func(w *models.Warehouse) {
		w.Rent = 10000
	})
	expensive := mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalApproved, func(w *models.Warehouse) {
		w.Rent = 90000
	})

	ids := listIDs(t, fx, ListQuery{Audience: AudiencePublic, SortBy: "rent", SortOrder: "asc"})
	assert.Equal(t, []string{cheap.ID, expensive.ID}, ids)
}

func TestPaginationMetaAndOutOfRangePage(t *testing.T) {
	fx := newTestService(t)
	owner := mustCreateTestUser(t, fx.conn, enums.RoleUser)
	for i := 0; i < 5; i++ {
		mustCreateTestWarehouse(t, fx.conn, owner.ID, enums.ApprovalApproved, nil)
	}

	result, err := fx.svc.List(context.Background(), ListQuery{
		Audience: AudiencePublic,
		Page:     pagination.Params{Page: 2, Limit: 2},
	})
	require.NoError(t, err)

	assert.Len(t, result.Items, 2)
	assert.Equal(t, int64(5), result.Meta.TotalItems)
	assert.Equal(t, int64(3), result.Meta.TotalPages)
	assert.True(t, result.Meta.HasNext)
	assert.True(t, result.Meta.HasPrev)

	beyond, err := fx.svc.List(context.Background(), ListQuery{
		Audience: AudiencePublic,
		Page:     pagination.Params{Page: 9, Limit: 2},
	})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, int64(3), beyond.Meta.TotalPages)
	assert.False(t, beyond.Meta.HasNext)
}
