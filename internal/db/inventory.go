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

// InventoryCollection defines the interface for inventory item operations.
type InventoryCollection interface {
	InsertItem(ctx context.Context, item models.InventoryItem) (primitive.ObjectID, error)
	FindItemByID(ctx context.Context, id string) (*models.InventoryItem, error)
	FindItems(ctx context.Context, filter bson.M) ([]models.InventoryItem, error)
	UpdateItem(ctx context.Context, id string, item models.InventoryItem) error
	DeleteItem(ctx context.Context, id string) error
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) (*models.InventoryItem, error)
	AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) (*models.InventoryItem, error)
	FindLowStock(ctx context.Context) ([]models.InventoryItem, error)
}

// MongoInventoryCollection implements InventoryCollection for MongoDB.
type MongoInventoryCollection struct {
	Collection *mongo.Collection
}

// InsertItem inserts an inventory item and returns its id.
func (c *MongoInventoryCollection) InsertItem(ctx context.Context, item models.InventoryItem) (primitive.ObjectID, error) {
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, item)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return item.ID, nil
}

// FindItemByID finds an inventory item by its ID.
func (c *MongoInventoryCollection) FindItemByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid item ID: %w", err)
	}
	var item models.InventoryItem
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("inventory item %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &item, nil
}

// FindItems queries inventory items with an arbitrary filter.
func (c *MongoInventoryCollection) FindItems(ctx context.Context, filter bson.M) ([]models.InventoryItem, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var items []models.InventoryItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItem replaces the mutable fields of an inventory item.
func (c *MongoInventoryCollection) UpdateItem(ctx context.Context, id string, item models.InventoryItem) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid item ID: %w", err)
	}
	item.ID = objectID
	item.UpdatedAt = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": item})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("inventory item %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteItem deletes an inventory item by its ID.
func (c *MongoInventoryCollection) DeleteItem(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid item ID: %w", err)
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("inventory item %s: %w", id, ErrNotFound)
	}
	return nil
}

// DecrementStock atomically decrements an item's stock, refusing to go
// negative. Returns the item after the decrement, ErrInsufficientStock when
// the available stock is below the requested quantity, or ErrNotFound when
// the item does not exist.
func (c *MongoInventoryCollection) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) (*models.InventoryItem, error) {
	filter := bson.M{
		"_id":           id,
		"current_stock": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"current_stock": -quantity},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item models.InventoryItem
	err := c.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&item)
	if err == nil {
		return &item, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}
	// Either the item is missing or the guard rejected the decrement.
	count, countErr := c.Collection.CountDocuments(ctx, bson.M{"_id": id})
	if countErr != nil {
		return nil, countErr
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrInsufficientStock
}

// AdjustStock applies a manual stock adjustment (positive or negative),
// with the same never-negative guard as DecrementStock.
func (c *MongoInventoryCollection) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) (*models.InventoryItem, error) {
	if delta < 0 {
		return c.DecrementStock(ctx, id, -delta)
	}
	update := bson.M{
		"$inc": bson.M{"current_stock": delta},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item models.InventoryItem
	err := c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindLowStock returns items at or below their reorder threshold.
func (c *MongoInventoryCollection) FindLowStock(ctx context.Context) ([]models.InventoryItem, error) {
	filter := bson.M{
		"$expr": bson.M{"$lte": bson.A{"$current_stock", "$min_stock"}},
	}
	return c.FindItems(ctx, filter)
}
