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

// MaintenanceCollection defines the interface for maintenance record
// operations. The scheduler and completion handler depend on this interface
// rather than the Mongo implementation.
type MaintenanceCollection interface {
	InsertMaintenance(ctx context.Context, rec models.MaintenanceRecord) (primitive.ObjectID, error)
	FindMaintenanceByID(ctx context.Context, id string) (*models.MaintenanceRecord, error)
	FindMaintenance(ctx context.Context, filter bson.M) ([]models.MaintenanceRecord, error)
	UpdateMaintenance(ctx context.Context, id string, rec models.MaintenanceRecord) error
	DeleteMaintenance(ctx context.Context, id string) error
	FindActiveTemplates(ctx context.Context, asOf time.Time) ([]models.MaintenanceRecord, error)
	FindOccurrenceByDay(ctx context.Context, parentID primitive.ObjectID, day string) (*models.MaintenanceRecord, error)
	FindScheduledBetween(ctx context.Context, from, to time.Time) ([]models.MaintenanceRecord, error)
	UpdateScheduledDate(ctx context.Context, id primitive.ObjectID, date time.Time) error
}

// MongoMaintenanceCollection implements MaintenanceCollection for MongoDB.
type MongoMaintenanceCollection struct {
	Collection *mongo.Collection
}

// InsertMaintenance inserts a maintenance record and returns its id. An
// insert that violates the occurrence dedup index reports
// ErrDuplicateOccurrence.
func (c *MongoMaintenanceCollection) InsertMaintenance(ctx context.Context, rec models.MaintenanceRecord) (primitive.ObjectID, error) {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, rec)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateOccurrence
		}
		return primitive.NilObjectID, err
	}
	return rec.ID, nil
}

// FindMaintenanceByID finds a maintenance record by its ID.
func (c *MongoMaintenanceCollection) FindMaintenanceByID(ctx context.Context, id string) (*models.MaintenanceRecord, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid maintenance ID: %w", err)
	}
	var rec models.MaintenanceRecord
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("maintenance record %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}

// FindMaintenance queries maintenance records with an arbitrary filter.
func (c *MongoMaintenanceCollection) FindMaintenance(ctx context.Context, filter bson.M) ([]models.MaintenanceRecord, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var recs []models.MaintenanceRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// UpdateMaintenance replaces the mutable fields of a maintenance record.
func (c *MongoMaintenanceCollection) UpdateMaintenance(ctx context.Context, id string, rec models.MaintenanceRecord) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid maintenance ID: %w", err)
	}
	rec.ID = objectID
	rec.UpdatedAt = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": rec})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("maintenance record %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteMaintenance deletes a maintenance record by its ID. Occurrences
// spawned from a deleted template are left in place: parent references are
// for lookup only.
func (c *MongoMaintenanceCollection) DeleteMaintenance(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid maintenance ID: %w", err)
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("maintenance record %s: %w", id, ErrNotFound)
	}
	return nil
}

// FindActiveTemplates returns recurring templates eligible for occurrence
// generation as of the given time: not cancelled and not past their
// recurrence end date.
func (c *MongoMaintenanceCollection) FindActiveTemplates(ctx context.Context, asOf time.Time) ([]models.MaintenanceRecord, error) {
	filter := bson.M{
		"is_template":  true,
		"is_recurring": true,
		"status":       bson.M{"$ne": models.StatusCancelled},
		"$or": []bson.M{
			{"recurrence_end_date": nil},
			{"recurrence_end_date": bson.M{"$gte": asOf}},
		},
	}
	return c.FindMaintenance(ctx, filter)
}

// FindOccurrenceByDay finds a generated occurrence for a template and
// calendar day, or ErrNotFound.
func (c *MongoMaintenanceCollection) FindOccurrenceByDay(ctx context.Context, parentID primitive.ObjectID, day string) (*models.MaintenanceRecord, error) {
	filter := bson.M{
		"parent_maintenance_id": parentID,
		"scheduled_day":         day,
		"is_template":           false,
	}
	var rec models.MaintenanceRecord
	err := c.Collection.FindOne(ctx, filter).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// FindScheduledBetween returns non-terminal, non-template records scheduled
// within [from, to].
func (c *MongoMaintenanceCollection) FindScheduledBetween(ctx context.Context, from, to time.Time) ([]models.MaintenanceRecord, error) {
	filter := bson.M{
		"is_template":    false,
		"status":         bson.M{"$in": []models.MaintenanceStatus{models.StatusPending, models.StatusInProgress}},
		"scheduled_date": bson.M{"$gte": from, "$lte": to},
	}
	return c.FindMaintenance(ctx, filter)
}

// UpdateScheduledDate advances a template's scheduled date after an
// occurrence has been spawned for it.
func (c *MongoMaintenanceCollection) UpdateScheduledDate(ctx context.Context, id primitive.ObjectID, date time.Time) error {
	_, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"scheduled_date": date, "updated_at": time.Now()}},
	)
	return err
}
