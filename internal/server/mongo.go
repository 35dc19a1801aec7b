package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erdraw/erdraw/pkg/errors"
)

const diagramCollection = "diagrams"

// MongoStore is a MongoDB-backed Store for multi-instance deployments.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect mongodb")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongodb")
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(diagramCollection),
	}, nil
}

// Put inserts or replaces a diagram.
func (s *MongoStore) Put(ctx context.Context, d *Diagram) error {
	now := time.Now().UTC()
	if d.ID == "" {
		d.ID = uuid.NewString()
		d.CreatedAt = now
	} else if d.CreatedAt.IsZero() {
		var existing Diagram
		err := s.collection.FindOne(ctx, bson.M{"_id": d.ID}).Decode(&existing)
		if err == nil {
			d.CreatedAt = existing.CreatedAt
		} else {
			d.CreatedAt = now
		}
	}
	d.UpdatedAt = now

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": d.ID}, d, opts); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "store diagram %s", d.ID)
	}
	return nil
}

// Get retrieves a diagram by id.
func (s *MongoStore) Get(ctx context.Context, id string) (*Diagram, error) {
	var d Diagram
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeNotFound, "diagram %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load diagram %s", id)
	}
	return &d, nil
}

// List returns summaries sorted by recency.
func (s *MongoStore) List(ctx context.Context) ([]DiagramSummary, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "title": 1, "updated_at": 1}).
		SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list diagrams")
	}
	defer cursor.Close(ctx)

	var summaries []DiagramSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode diagram list")
	}
	return summaries, nil
}

// Delete removes a diagram.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete diagram %s", id)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
