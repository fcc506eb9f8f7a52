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

// SiteCollection defines the interface for site operations.
type SiteCollection interface {
	InsertSite(ctx context.Context, site models.Site) (primitive.ObjectID, error)
	FindSiteByID(ctx context.Context, id string) (*models.Site, error)
	FindSites(ctx context.Context, filter bson.M) ([]models.Site, error)
	UpdateSite(ctx context.Context, id string, site models.Site) error
	DeleteSite(ctx context.Context, id string) error
}

// MongoSiteCollection implements SiteCollection for MongoDB.
type MongoSiteCollection struct {
	Collection *mongo.Collection
}

// InsertSite inserts a site and returns its id.
func (c *MongoSiteCollection) InsertSite(ctx context.Context, site models.Site) (primitive.ObjectID, error) {
	if site.ID.IsZero() {
		site.ID = primitive.NewObjectID()
	}
	site.CreatedAt = time.Now()
	site.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, site)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return site.ID, nil
}

// FindSiteByID finds a site by its ID.
func (c *MongoSiteCollection) FindSiteByID(ctx context.Context, id string) (*models.Site, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid site ID: %w", err)
	}
	var site models.Site
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&site)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("site %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &site, nil
}

// FindSites queries sites with an arbitrary filter.
func (c *MongoSiteCollection) FindSites(ctx context.Context, filter bson.M) ([]models.Site, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var sites []models.Site
	if err := cursor.All(ctx, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

// UpdateSite replaces the mutable fields of a site.
func (c *MongoSiteCollection) UpdateSite(ctx context.Context, id string, site models.Site) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid site ID: %w", err)
	}
	site.ID = objectID
	site.UpdatedAt = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": site})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("site %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteSite deletes a site by its ID.
func (c *MongoSiteCollection) DeleteSite(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid site ID: %w", err)
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("site %s: %w", id, ErrNotFound)
	}
	return nil
}
