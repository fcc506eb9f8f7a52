package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InventoryItem represents a stockable part or material. CurrentStock never
// goes negative: deductions that would overdraw an item are rejected for that
// item only.
type InventoryItem struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	Category     string              `bson:"category" json:"category"`
	CurrentStock int                 `bson:"current_stock" json:"current_stock"`
	MinStock     int                 `bson:"min_stock" json:"min_stock"`
	Unit         string              `bson:"unit" json:"unit"`
	UnitCost     float64             `bson:"unit_cost" json:"unit_cost"`
	SiteID       *primitive.ObjectID `bson:"site_id,omitempty" json:"site_id,omitempty"`
	Supplier     string              `bson:"supplier" json:"supplier"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

// BelowReorder reports whether the item is at or under its reorder threshold.
func (i *InventoryItem) BelowReorder() bool {
	return i.CurrentStock <= i.MinStock
}
