package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CounterCollection provides monotonic sequences for document numbering.
// Count-based numbering is racy under concurrent inserts, so requisition
// numbers come from here instead.
type CounterCollection interface {
	NextSequence(ctx context.Context, name string) (int64, error)
}

// MongoCounterCollection implements CounterCollection for MongoDB.
type MongoCounterCollection struct {
	Collection *mongo.Collection
}

// NextSequence atomically increments and returns the named sequence,
// creating it at 1 on first use.
func (c *MongoCounterCollection) NextSequence(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := c.Collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
