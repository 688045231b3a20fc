package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoConnectTimeout = 10 * time.Second

// ConnectToMongoDB opens a client for uri. When ping is set the primary is pinged
// before the client is returned.
func ConnectToMongoDB(ctx context.Context, uri string, ping bool) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo URI cannot be empty")
	}

	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if ping {
		if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
	}

	slog.InfoContext(ctx, "Connected to MongoDB")
	return client, nil
}

// DisconnectMongoDB closes the client, logging any error.
func DisconnectMongoDB(ctx context.Context, client *mongo.Client) {
	if client == nil {
		return
	}
	if err := client.Disconnect(ctx); err != nil {
		slog.ErrorContext(ctx, "Error disconnecting from MongoDB", slog.String("error", err.Error()))
		return
	}
	slog.InfoContext(ctx, "MongoDB client disconnected")
}
