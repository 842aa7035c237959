// internal/common/database/mongo.go
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoClient wraps the MongoDB client
type MongoClient struct {
	Client *mongo.Client
}

// NewMongo connects to a mongodb:// URL and verifies the connection.
func NewMongo(ctx context.Context, mongoURL string, timeout time.Duration) (*MongoClient, error) {
	opts := options.Client().ApplyURI(mongoURL)
	if timeout > 0 {
		opts.SetTimeout(timeout)
		opts.SetServerSelectionTimeout(timeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}
	return &MongoClient{Client: client}, nil
}

// Collection returns a handle to database.collection.
func (c *MongoClient) Collection(database, collection string) *mongo.Collection {
	return c.Client.Database(database).Collection(collection)
}

// Close disconnects the client
func (c *MongoClient) Close(ctx context.Context) error {
	if c.Client != nil {
		return c.Client.Disconnect(ctx)
	}
	return nil
}
