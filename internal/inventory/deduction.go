package inventory

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/upkeeply/maintenance-tracker/internal/db"
	"github.com/upkeeply/maintenance-tracker/internal/models"
)

// Deduction records one successful stock decrement.
type Deduction struct {
	ItemID         string `json:"item_id"`
	ItemName       string `json:"item_name"`
	Deducted       int    `json:"deducted"`
	RemainingStock int    `json:"remaining_stock"`
}

// Result covers every input entry exactly once, split into per-item
// successes and per-item error strings.
type Result struct {
	Successes []Deduction `json:"successes"`
	Errors    []string    `json:"errors"`
}

// HasErrors reports whether any entry in the batch failed.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Deductor decrements inventory stock for materials consumed by maintenance
// work. Entries are processed independently: there is no cross-item
// transaction and no rollback, so a batch where item A succeeds and item B
// fails leaves A's decrement in place. Callers surface the error list so the
// discrepancy can be reconciled by hand.
type Deductor struct {
	items  db.InventoryCollection
	logger *log.Logger
}

// NewDeductor creates a deduction engine.
func NewDeductor(items db.InventoryCollection, logger *log.Logger) *Deductor {
	return &Deductor{items: items, logger: logger}
}

// Deduct decrements stock for each material entry. It never fails the whole
// batch for a single bad entry: a missing item or insufficient stock becomes
// an error string and processing continues.
func (d *Deductor) Deduct(ctx context.Context, materials []models.MaterialUsage) *Result {
	result := &Result{}

	for _, material := range materials {
		id := material.ItemID
		item, err := d.items.FindItemByID(ctx, id.Hex())
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				result.Errors = append(result.Errors, fmt.Sprintf("item %s not found", id.Hex()))
			} else {
				result.Errors = append(result.Errors, fmt.Sprintf("item %s: lookup failed: %v", id.Hex(), err))
			}
			continue
		}

		if item.CurrentStock < material.QuantityUsed {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"insufficient stock for %s: %d available, %d requested",
				item.Name, item.CurrentStock, material.QuantityUsed))
			continue
		}

		updated, err := d.items.DecrementStock(ctx, id, material.QuantityUsed)
		if err != nil {
			if errors.Is(err, db.ErrInsufficientStock) {
				// Stock moved between the check and the decrement.
				result.Errors = append(result.Errors, fmt.Sprintf(
					"insufficient stock for %s: %d requested", item.Name, material.QuantityUsed))
			} else {
				result.Errors = append(result.Errors, fmt.Sprintf(
					"failed to deduct %s: %v", item.Name, err))
			}
			continue
		}

		result.Successes = append(result.Successes, Deduction{
			ItemID:         id.Hex(),
			ItemName:       updated.Name,
			Deducted:       material.QuantityUsed,
			RemainingStock: updated.CurrentStock,
		})
		d.logger.WithFields(log.Fields{
			"item":      updated.Name,
			"deducted":  material.QuantityUsed,
			"remaining": updated.CurrentStock,
		}).Debug("stock deducted")
	}

	return result
}
