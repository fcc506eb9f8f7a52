package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequisitionStatus represents the approval state of a purchase requisition.
type RequisitionStatus string

const (
	RequisitionPending   RequisitionStatus = "pending"
	RequisitionApproved  RequisitionStatus = "approved"
	RequisitionRejected  RequisitionStatus = "rejected"
	RequisitionFulfilled RequisitionStatus = "fulfilled"
)

// RequisitionItem is one line of a requisition.
type RequisitionItem struct {
	ItemID   primitive.ObjectID `bson:"item_id" json:"item_id"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// Requisition is a request to purchase inventory stock. Number is assigned
// from a monotonic counter at creation time, never derived from document
// counts.
type Requisition struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Number      string              `bson:"number" json:"number"`
	Title       string              `bson:"title" json:"title"`
	Items       []RequisitionItem   `bson:"items" json:"items"`
	Status      RequisitionStatus   `bson:"status" json:"status"`
	RequestedBy primitive.ObjectID  `bson:"requested_by" json:"requested_by"`
	SiteID      *primitive.ObjectID `bson:"site_id,omitempty" json:"site_id,omitempty"`
	Notes       string              `bson:"notes" json:"notes"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}
