package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOptions configures a MongoDB connection.
type MongoOptions struct {
	URI      string
	Username string
	Password string
}

// NewMongo connects a client pinned to the stable server API v1.
func NewMongo(ctx context.Context, o MongoOptions) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	opts := options.Client().ApplyURI(o.URI).SetServerAPIOptions(serverAPI)
	if o.Username != "" {
		opts.SetAuth(options.Credential{Username: o.Username, Password: o.Password})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return client, nil
}
