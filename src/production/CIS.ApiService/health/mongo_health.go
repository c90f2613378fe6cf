// Package health owns database connectivity for the API service:
// connecting with timeouts, schema bootstrap for the Postgres backend
// and the checks behind the readiness endpoint.
package health

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	config "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Config"
)

// ConnectMongoWithTimeout creates a MongoDB connection and verifies it
// with a ping before returning.
func ConnectMongoWithTimeout(cfg *config.Config, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.Database.MongoURI)

	// Atlas requires TLS 1.2+.
	clientOptions.SetTLSConfig(&tls.Config{
		MinVersion: tls.VersionTLS12,
	})

	clientOptions.SetServerSelectionTimeout(30 * time.Second)
	clientOptions.SetConnectTimeout(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("unable to ping MongoDB: %w", err)
	}

	return client, nil
}

// ReadingsCollection returns the collection holding sensor readings.
func ReadingsCollection(client *mongo.Client, cfg *config.Config) *mongo.Collection {
	return client.Database(cfg.Database.MongoDB).Collection(cfg.Database.ReadingsColl)
}

// ConfigurationsCollection returns the collection holding the
// append-only configuration versions.
func ConfigurationsCollection(client *mongo.Client, cfg *config.Config) *mongo.Collection {
	return client.Database(cfg.Database.MongoDB).Collection(cfg.Database.ConfigsColl)
}

// UsersCollection returns the collection holding dashboard users.
func UsersCollection(client *mongo.Client, cfg *config.Config) *mongo.Collection {
	return client.Database(cfg.Database.MongoDB).Collection(cfg.Database.UsersColl)
}

// PingMongo checks the MongoDB connection for the readiness probe.
func PingMongo(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return fmt.Errorf("mongo client is nil")
	}
	return client.Ping(ctx, readpref.Primary())
}
