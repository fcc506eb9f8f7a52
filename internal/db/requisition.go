package db

import (
	"context"
	"fmt"
	"time"

	"github.com/upkeeply/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RequisitionCollection defines the interface for requisition operations.
type RequisitionCollection interface {
	InsertRequisition(ctx context.Context, req models.Requisition) (primitive.ObjectID, error)
	FindRequisitionByID(ctx context.Context, id string) (*models.Requisition, error)
	FindRequisitions(ctx context.Context, filter bson.M) ([]models.Requisition, error)
	UpdateRequisitionStatus(ctx context.Context, id string, status models.RequisitionStatus) error
}

// MongoRequisitionCollection implements RequisitionCollection for MongoDB.
type MongoRequisitionCollection struct {
	Collection *mongo.Collection
}

// InsertRequisition inserts a requisition and returns its id.
func (c *MongoRequisitionCollection) InsertRequisition(ctx context.Context, req models.Requisition) (primitive.ObjectID, error) {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, req)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return req.ID, nil
}

// FindRequisitionByID finds a requisition by its ID.
func (c *MongoRequisitionCollection) FindRequisitionByID(ctx context.Context, id string) (*models.Requisition, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid requisition ID: %w", err)
	}
	var req models.Requisition
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("requisition %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &req, nil
}

// FindRequisitions queries requisitions with an arbitrary filter.
func (c *MongoRequisitionCollection) FindRequisitions(ctx context.Context, filter bson.M) ([]models.Requisition, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var reqs []models.Requisition
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// UpdateRequisitionStatus updates a requisition's approval status.
func (c *MongoRequisitionCollection) UpdateRequisitionStatus(ctx context.Context, id string, status models.RequisitionStatus) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid requisition ID: %w", err)
	}
	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("requisition %s: %w", id, ErrNotFound)
	}
	return nil
}
