package db

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	client  *mongo.Client
	initErr error
	once    sync.Once
)

// Connect dials MongoDB exactly once for the process. Concurrent first-time
// callers share the same pending connection instead of opening duplicates;
// later callers get the cached handle.
func Connect(uri string) (*mongo.Client, error) {
	once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		opts := options.Client().ApplyURI(uri).
			SetServerSelectionTimeout(20 * time.Second).
			SetConnectTimeout(15 * time.Second).
			SetMaxPoolSize(10).
			SetMinPoolSize(1)

		c, err := mongo.Connect(ctx, opts)
		if err != nil {
			initErr = err
			return
		}
		if err := c.Ping(ctx, nil); err != nil {
			_ = c.Disconnect(ctx)
			initErr = err
			return
		}
		client = c
	})
	return client, initErr
}
