package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType categorizes in-app notifications.
type NotificationType string

const (
	NotificationMaintenance NotificationType = "maintenance"
	NotificationInventory   NotificationType = "inventory"
	NotificationRequisition NotificationType = "requisition"
	NotificationSystem      NotificationType = "system"
	NotificationReminder    NotificationType = "reminder"
)

// Notification is an ephemeral advisory record shown to one user. Read
// notifications are swept by the scheduler after a retention window.
type Notification struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Recipient    primitive.ObjectID  `bson:"recipient" json:"recipient"`
	Title        string              `bson:"title" json:"title"`
	Message      string              `bson:"message" json:"message"`
	Type         NotificationType    `bson:"type" json:"type"`
	Priority     Priority            `bson:"priority" json:"priority"`
	RelatedModel string              `bson:"related_model,omitempty" json:"related_model,omitempty"`
	RelatedID    *primitive.ObjectID `bson:"related_id,omitempty" json:"related_id,omitempty"`
	ActionURL    string              `bson:"action_url,omitempty" json:"action_url,omitempty"`
	IsRead       bool                `bson:"is_read" json:"is_read"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
}
