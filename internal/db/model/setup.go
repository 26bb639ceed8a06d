package model

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/config"
)

// mongo error code for "collection already exists"
const namespaceExistsErrorCode = 48

var collectionIndexes = map[string][]bson.D{
	UserStatsCollection: {
		{{Key: "dna_score", Value: -1}},
		{{Key: "total_volume_usd", Value: -1}},
	},
	OverallStatsCollection: nil,
}

// Setup creates the collections and indexes this service relies on. It is
// idempotent and safe to run on every start.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address).SetAuth(credential)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Disconnect(ctx)
	}()

	database := client.Database(cfg.DbName)
	for name, indexes := range collectionIndexes {
		if err := createCollection(ctx, database, name); err != nil {
			return err
		}
		for _, keys := range indexes {
			if _, err := database.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys}); err != nil {
				return err
			}
		}
	}

	return nil
}

func createCollection(ctx context.Context, database *mongo.Database, name string) error {
	err := database.CreateCollection(ctx, name)
	if err == nil {
		return nil
	}
	// an already existing collection is fine
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.HasErrorCode(namespaceExistsErrorCode) {
		return nil
	}
	return err
}
