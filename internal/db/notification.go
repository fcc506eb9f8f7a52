package db

import (
	"context"
	"fmt"
	"time"

	"github.com/upkeeply/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationCollection defines the interface for notification operations.
type NotificationCollection interface {
	InsertNotifications(ctx context.Context, notifications []models.Notification) error
	FindByRecipient(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string, recipient primitive.ObjectID) error
	DeleteNotification(ctx context.Context, id string, recipient primitive.ObjectID) error
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// MongoNotificationCollection implements NotificationCollection for MongoDB.
type MongoNotificationCollection struct {
	Collection *mongo.Collection
}

// InsertNotifications batch-inserts notifications, one per recipient.
func (c *MongoNotificationCollection) InsertNotifications(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(notifications))
	now := time.Now()
	for _, n := range notifications {
		if n.ID.IsZero() {
			n.ID = primitive.NewObjectID()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		docs = append(docs, n)
	}
	_, err := c.Collection.InsertMany(ctx, docs)
	return err
}

// FindByRecipient returns a user's notifications, newest first.
func (c *MongoNotificationCollection) FindByRecipient(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool) ([]models.Notification, error) {
	filter := bson.M{"recipient": recipient}
	if unreadOnly {
		filter["is_read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead marks one of a user's notifications as read.
func (c *MongoNotificationCollection) MarkRead(ctx context.Context, id string, recipient primitive.ObjectID) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification ID: %w", err)
	}
	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID, "recipient": recipient},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteNotification deletes one of a user's notifications.
func (c *MongoNotificationCollection) DeleteNotification(ctx context.Context, id string, recipient primitive.ObjectID) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification ID: %w", err)
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID, "recipient": recipient})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteReadBefore removes read notifications created before the cutoff and
// returns how many were deleted.
func (c *MongoNotificationCollection) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := c.Collection.DeleteMany(ctx, bson.M{
		"is_read":    true,
		"created_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
