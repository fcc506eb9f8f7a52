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

// MachineCollection defines the interface for machine operations.
type MachineCollection interface {
	InsertMachine(ctx context.Context, machine models.Machine) (primitive.ObjectID, error)
	FindMachineByID(ctx context.Context, id string) (*models.Machine, error)
	FindMachines(ctx context.Context, filter bson.M) ([]models.Machine, error)
	UpdateMachine(ctx context.Context, id string, machine models.Machine) error
	DeleteMachine(ctx context.Context, id string) error
}

// MongoMachineCollection implements MachineCollection for MongoDB.
type MongoMachineCollection struct {
	Collection *mongo.Collection
}

// InsertMachine inserts a machine and returns its id.
func (c *MongoMachineCollection) InsertMachine(ctx context.Context, machine models.Machine) (primitive.ObjectID, error) {
	if machine.ID.IsZero() {
		machine.ID = primitive.NewObjectID()
	}
	machine.CreatedAt = time.Now()
	machine.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, machine)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return machine.ID, nil
}

// FindMachineByID finds a machine by its ID.
func (c *MongoMachineCollection) FindMachineByID(ctx context.Context, id string) (*models.Machine, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid machine ID: %w", err)
	}
	var machine models.Machine
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&machine)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("machine %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &machine, nil
}

// FindMachines queries machines with an arbitrary filter.
func (c *MongoMachineCollection) FindMachines(ctx context.Context, filter bson.M) ([]models.Machine, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var machines []models.Machine
	if err := cursor.All(ctx, &machines); err != nil {
		return nil, err
	}
	return machines, nil
}

// UpdateMachine replaces the mutable fields of a machine.
func (c *MongoMachineCollection) UpdateMachine(ctx context.Context, id string, machine models.Machine) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid machine ID: %w", err)
	}
	machine.ID = objectID
	machine.UpdatedAt = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": machine})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("machine %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteMachine deletes a machine by its ID.
func (c *MongoMachineCollection) DeleteMachine(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid machine ID: %w", err)
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("machine %s: %w", id, ErrNotFound)
	}
	return nil
}
