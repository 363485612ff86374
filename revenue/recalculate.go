/*
recalculate.go - Rebuilding monthly sales rows from deal items

PURPOSE:
  A deal item's monthly_sales rows are derived data. Whenever an item is
  created or its amount or dates change, its rows are rebuilt by prorating
  the item again and replacing the old rows as a whole.

FLOWS:
  SaveItem:        validate, store the item, post its schedule
  RecalculateItem: re-prorate one stored item
  RecalculateAll:  re-prorate every stored item; one failing item does not
                   stop the others

SEE ALSO:
  - generic/ledger.go: Prorate + replace
*/
package revenue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/warp/revenue-engine/generic"
)

// Recalculator keeps monthly sales rows in step with deal items.
type Recalculator struct {
	store  Store
	ledger generic.Ledger
	logger *slog.Logger
}

// NewRecalculator writes schedules through a ledger over the store.
// A nil logger discards output.
func NewRecalculator(store Store, logger *slog.Logger) *Recalculator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Recalculator{
		store:  store,
		ledger: generic.NewLedger(store),
		logger: logger.With("component", "recalculator"),
	}
}

// SaveItem stores a new or changed item and rebuilds its rows. An invalid
// interval is rejected before anything is written, and a new item whose
// rows cannot be posted is removed again.
func (rc *Recalculator) SaveItem(ctx context.Context, item DealItem) (generic.ProrationResult, error) {
	if err := item.Interval().Validate(); err != nil {
		return generic.ProrationResult{}, err
	}
	if _, err := ParseProductType(string(item.ProductType)); err != nil {
		return generic.ProrationResult{}, err
	}
	deal, err := rc.store.GetDeal(ctx, item.DealID)
	if err != nil {
		return generic.ProrationResult{}, err
	}
	if deal == nil {
		return generic.ProrationResult{}, fmt.Errorf("%w: deal %q", generic.ErrDealNotFound, item.DealID)
	}
	_, err = rc.store.GetDealItem(ctx, item.ID)
	isNew := errors.Is(err, generic.ErrDealItemNotFound)
	if err != nil && !isNew {
		return generic.ProrationResult{}, err
	}

	if err := rc.store.SaveDealItem(ctx, item); err != nil {
		return generic.ProrationResult{}, fmt.Errorf("save deal item %s: %w", item.ID, err)
	}
	result, err := rc.post(ctx, item)
	if err != nil && isNew {
		if rmErr := rc.remove(context.WithoutCancel(ctx), item.ID); rmErr != nil {
			rc.logger.Error("failed to discard unposted deal item", "deal_item_id", item.ID, "error", rmErr)
		}
	}
	return result, err
}

// RemoveItem deletes an item and its monthly rows.
func (rc *Recalculator) RemoveItem(ctx context.Context, id generic.ContractID) error {
	if _, err := rc.store.GetDealItem(ctx, id); err != nil {
		return err
	}
	return rc.remove(ctx, id)
}

// Schedule returns the stored monthly rows of an item.
func (rc *Recalculator) Schedule(ctx context.Context, id generic.ContractID) ([]generic.AllocationRecord, error) {
	if _, err := rc.store.GetDealItem(ctx, id); err != nil {
		return nil, err
	}
	return rc.ledger.Schedule(ctx, id)
}

func (rc *Recalculator) remove(ctx context.Context, id generic.ContractID) error {
	if err := rc.ledger.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove schedule for %s: %w", id, err)
	}
	if err := rc.store.DeleteDealItem(ctx, id); err != nil {
		return err
	}
	rc.logger.Info("removed deal item", "deal_item_id", id)
	return nil
}

// RecalculateItem rebuilds the rows of one stored item.
func (rc *Recalculator) RecalculateItem(ctx context.Context, id generic.ContractID) (generic.ProrationResult, error) {
	item, err := rc.store.GetDealItem(ctx, id)
	if err != nil {
		return generic.ProrationResult{}, err
	}
	return rc.post(ctx, *item)
}

// ItemFailure records one item RecalculateAll could not rebuild.
type ItemFailure struct {
	DealItemID generic.ContractID `json:"deal_item_id"`
	Error      string             `json:"error"`
}

// RecalcSummary is the outcome of RecalculateAll.
type RecalcSummary struct {
	Processed int           `json:"processed"`
	Failed    []ItemFailure `json:"failed"`
}

// RecalculateAll rebuilds the rows of every stored item. Items that fail
// are logged and listed in the summary; the returned error is reserved for
// failures that stop the run, such as listing items or a cancelled context.
func (rc *Recalculator) RecalculateAll(ctx context.Context) (RecalcSummary, error) {
	items, err := rc.store.ListDealItems(ctx)
	if err != nil {
		return RecalcSummary{}, fmt.Errorf("list deal items: %w", err)
	}

	summary := RecalcSummary{Failed: []ItemFailure{}}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if _, err := rc.post(ctx, item); err != nil {
			rc.logger.Warn("recalculation failed", "deal_item_id", item.ID, "error", err)
			summary.Failed = append(summary.Failed, ItemFailure{DealItemID: item.ID, Error: err.Error()})
			continue
		}
		summary.Processed++
	}

	rc.logger.Info("recalculated all deal items",
		"processed", summary.Processed,
		"failed", len(summary.Failed),
	)
	return summary, nil
}

func (rc *Recalculator) post(ctx context.Context, item DealItem) (generic.ProrationResult, error) {
	result, err := rc.ledger.Post(ctx, item.ID, item.Interval())
	if err != nil {
		return generic.ProrationResult{}, fmt.Errorf("post schedule for %s: %w", item.ID, err)
	}
	rc.logger.Debug("posted schedule",
		"deal_item_id", item.ID,
		"months", len(result.MonthlyBreakdown),
		"daily_rate", result.DailyRate.String(),
	)
	return result, nil
}
