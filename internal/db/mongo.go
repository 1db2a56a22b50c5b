package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect dials MongoDB, checks the primary answers and returns the named
// database. The caller owns the client through db.Client().
func Connect(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetAppName("colorcal").
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo %s: %w", dbName, err)
	}

	return client.Database(dbName), nil
}
