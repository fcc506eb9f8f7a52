package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Site represents a physical location housing machines and inventory.
type Site struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Address      string             `bson:"address" json:"address"`
	ContactName  string             `bson:"contact_name" json:"contact_name"`
	ContactEmail string             `bson:"contact_email" json:"contact_email"`
	ContactPhone string             `bson:"contact_phone" json:"contact_phone"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
