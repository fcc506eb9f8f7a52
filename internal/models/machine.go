package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Machine represents a maintainable asset at a site.
type Machine struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	Model        string              `bson:"model" json:"model"`
	Manufacturer string              `bson:"manufacturer" json:"manufacturer"`
	SerialNumber string              `bson:"serial_number" json:"serial_number"`
	SiteID       *primitive.ObjectID `bson:"site_id,omitempty" json:"site_id,omitempty"`
	Status       string              `bson:"status" json:"status"` // "operational", "maintenance", "down", "retired"
	InstallDate  *time.Time          `bson:"install_date,omitempty" json:"install_date,omitempty"`
	Notes        string              `bson:"notes" json:"notes"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}
