package revenue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/revenue-engine/generic"
	"github.com/warp/revenue-engine/revenue"
	"github.com/warp/revenue-engine/store/sqlite"
)

func TestSaveItem_PostsSchedule(t *testing.T) {
	// GIVEN: A deal and an item over 2023-11-15 .. 2024-01-10
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveDeal(ctx, revenue.Deal{ID: "deal-1", Status: revenue.DealOpen, DealDate: generic.NewDate(2023, time.November, 1)}))
	rc := revenue.NewRecalculator(store, nil)

	// WHEN: Saving it
	result, err := rc.SaveItem(ctx, revenue.DealItem{
		ID: "item-1", DealID: "deal-1", ProductName: "Support", ProductType: revenue.ProductService,
		Amount:    d("5700"),
		StartDate: generic.NewDate(2023, time.November, 15),
		EndDate:   generic.NewDate(2024, time.January, 10),
	})
	require.NoError(t, err)

	// THEN: 16, 31 and 10 days at 100/day are stored
	assert.Equal(t, 57, result.TotalDays)
	rows, err := store.LoadAllocations(ctx, "item-1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Amount.Equal(d("1600")))
	assert.True(t, rows[1].Amount.Equal(d("3100")))
	assert.True(t, rows[2].Amount.Equal(d("1000")))
}

func TestSaveItem_RejectsBeforeWriting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveDeal(ctx, revenue.Deal{ID: "deal-1", Status: revenue.DealOpen, DealDate: generic.NewDate(2023, time.November, 1)}))
	rc := revenue.NewRecalculator(store, nil)

	tests := []struct {
		name string
		item revenue.DealItem
		want error
	}{
		{"inverted dates", revenue.DealItem{ID: "a", DealID: "deal-1", ProductType: revenue.ProductLicense, Amount: d("10"),
			StartDate: generic.NewDate(2024, time.February, 1), EndDate: generic.NewDate(2024, time.January, 1)}, generic.ErrInvalidInterval},
		{"zero amount", revenue.DealItem{ID: "b", DealID: "deal-1", ProductType: revenue.ProductLicense, Amount: d("0"),
			StartDate: generic.NewDate(2024, time.January, 1), EndDate: generic.NewDate(2024, time.January, 31)}, generic.ErrInvalidInterval},
		{"unknown product type", revenue.DealItem{ID: "c", DealID: "deal-1", ProductType: "HARDWARE", Amount: d("10"),
			StartDate: generic.NewDate(2024, time.January, 1), EndDate: generic.NewDate(2024, time.January, 31)}, generic.ErrInvalidKind},
		{"unknown deal", revenue.DealItem{ID: "e", DealID: "nope", ProductType: revenue.ProductLicense, Amount: d("10"),
			StartDate: generic.NewDate(2024, time.January, 1), EndDate: generic.NewDate(2024, time.January, 31)}, generic.ErrDealNotFound},
		{"missing dates", revenue.DealItem{ID: "f", DealID: "deal-1", ProductType: revenue.ProductLicense, Amount: d("10")}, generic.ErrInvalidInterval},
		{"missing end date", revenue.DealItem{ID: "g", DealID: "deal-1", ProductType: revenue.ProductLicense, Amount: d("10"),
			StartDate: generic.NewDate(2024, time.January, 1)}, generic.ErrInvalidInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rc.SaveItem(ctx, tt.item)
			assert.ErrorIs(t, err, tt.want)

			_, err = store.GetDealItem(ctx, tt.item.ID)
			assert.ErrorIs(t, err, generic.ErrDealItemNotFound, "nothing stored")
		})
	}
}

// rejectingStore fails every allocation write.
type rejectingStore struct {
	*sqlite.Store
}

func (rejectingStore) ReplaceAllocations(context.Context, generic.ContractID, []generic.AllocationRecord) error {
	return errors.New("disk full")
}

func TestSaveItem_FailedPostDiscardsNewItem(t *testing.T) {
	// GIVEN: A store whose allocation writes fail
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveDeal(ctx, revenue.Deal{ID: "deal-1", Status: revenue.DealWon, DealDate: generic.NewDate(2023, time.January, 1)}))
	item := revenue.DealItem{
		ID: "item-1", DealID: "deal-1", ProductName: "Platform", ProductType: revenue.ProductLicense,
		Amount:    d("1200"),
		StartDate: generic.NewDate(2023, time.January, 1),
		EndDate:   generic.NewDate(2023, time.December, 31),
	}
	rc := revenue.NewRecalculator(rejectingStore{store}, nil)

	// WHEN: Saving a new item
	_, err := rc.SaveItem(ctx, item)

	// THEN: The item is not left behind
	require.Error(t, err)
	_, err = store.GetDealItem(ctx, "item-1")
	assert.ErrorIs(t, err, generic.ErrDealItemNotFound)
	items, err := store.ListDealItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	// An existing item survives a failed re-post with its previous rows
	_, err = revenue.NewRecalculator(store, nil).SaveItem(ctx, item)
	require.NoError(t, err)
	_, err = rc.SaveItem(ctx, item)
	require.Error(t, err)
	_, err = store.GetDealItem(ctx, "item-1")
	assert.NoError(t, err)
	rows, err := store.LoadAllocations(ctx, "item-1")
	require.NoError(t, err)
	assert.Len(t, rows, 12)
}

func TestRemoveItem(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveDeal(ctx, revenue.Deal{ID: "deal-1", Status: revenue.DealWon, DealDate: generic.NewDate(2023, time.January, 1)}))
	rc := revenue.NewRecalculator(store, nil)
	_, err := rc.SaveItem(ctx, revenue.DealItem{
		ID: "item-1", DealID: "deal-1", ProductName: "Platform", ProductType: revenue.ProductLicense,
		Amount:    d("3100"),
		StartDate: generic.NewDate(2023, time.December, 1),
		EndDate:   generic.NewDate(2023, time.December, 31),
	})
	require.NoError(t, err)

	rows, err := rc.Schedule(ctx, "item-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, rc.RemoveItem(ctx, "item-1"))

	sales, err := store.MonthlySales(ctx, generic.YearMonth{Year: 2023, Month: time.December})
	require.NoError(t, err)
	assert.Empty(t, sales)
	_, err = rc.Schedule(ctx, "item-1")
	assert.ErrorIs(t, err, generic.ErrDealItemNotFound)
	assert.ErrorIs(t, rc.RemoveItem(ctx, "item-1"), generic.ErrDealItemNotFound)
}

func TestRecalculateItem_FollowsChangedDates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveDeal(ctx, revenue.Deal{ID: "deal-1", Status: revenue.DealWon, DealDate: generic.NewDate(2023, time.January, 1)}))
	rc := revenue.NewRecalculator(store, nil)

	item := revenue.DealItem{
		ID: "item-1", DealID: "deal-1", ProductName: "Platform", ProductType: revenue.ProductLicense,
		Amount:    d("1200"),
		StartDate: generic.NewDate(2023, time.January, 1),
		EndDate:   generic.NewDate(2023, time.December, 31),
	}
	_, err := rc.SaveItem(ctx, item)
	require.NoError(t, err)

	// WHEN: The item is edited in storage and recalculated
	item.EndDate = generic.NewDate(2023, time.March, 31)
	require.NoError(t, store.SaveDealItem(ctx, item))
	result, err := rc.RecalculateItem(ctx, "item-1")
	require.NoError(t, err)

	// THEN: Only Jan..Mar remain
	assert.Len(t, result.MonthlyBreakdown, 3)
	rows, err := store.LoadAllocations(ctx, "item-1")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = rc.RecalculateItem(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrDealItemNotFound)
	assert.True(t, generic.IsNotFound(err))
}

func TestRecalculateAll(t *testing.T) {
	store := newTestStore(t)
	seedDashboard(t, store)
	ctx := context.Background()

	// Wipe the stored rows, then rebuild
	require.NoError(t, store.DeleteAllocations(ctx, "lic"))
	require.NoError(t, store.DeleteAllocations(ctx, "svc"))

	summary, err := revenue.NewRecalculator(store, nil).RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Empty(t, summary.Failed)

	lic, err := store.LoadAllocations(ctx, "lic")
	require.NoError(t, err)
	assert.Len(t, lic, 12)
	svc, err := store.LoadAllocations(ctx, "svc")
	require.NoError(t, err)
	assert.Len(t, svc, 1)
}

func TestRecalculateAll_CancelledContext(t *testing.T) {
	store := newTestStore(t)
	seedDashboard(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := revenue.NewRecalculator(store, nil).RecalculateAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
