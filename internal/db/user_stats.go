package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/db/model"
)

// GetUserStats fetches the stats document for one address.
func (db *Database) GetUserStats(ctx context.Context, address string) (*model.UserStatsDocument, error) {
	filter := bson.M{"_id": address}
	res := db.collection(model.UserStatsCollection).FindOne(ctx, filter)

	var doc model.UserStatsDocument
	err := res.Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     address,
				Message: "user stats not found",
			}
		}
		return nil, err
	}

	return &doc, nil
}

// SaveUserStats upserts the full stats document for one address. Only the
// update coordinator calls this, under the per-address lock.
func (db *Database) SaveUserStats(ctx context.Context, doc *model.UserStatsDocument) error {
	filter := bson.M{"_id": doc.Address}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.UserStatsCollection).UpdateOne(ctx, filter, update, opts)
	return err
}

// GetAllScores returns the (address, score, tier) projection of every user,
// ordered by score descending. Used to bootstrap the rank index at startup.
func (db *Database) GetAllScores(ctx context.Context) ([]model.UserScore, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "dna_score": 1, "tier": 1}).
		SetSort(bson.D{{Key: "dna_score", Value: -1}, {Key: "_id", Value: 1}})

	cursor, err := db.collection(model.UserStatsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var scores []model.UserScore
	if err := cursor.All(ctx, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// GetTopUsersByScore returns the best limit users with their full stats.
func (db *Database) GetTopUsersByScore(ctx context.Context, limit int64) ([]model.UserStatsDocument, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "dna_score", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)

	cursor, err := db.collection(model.UserStatsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []model.UserStatsDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// CalculateOverallStatsAggregated computes the user count and cumulative
// volume with a single aggregation, without loading all users into memory.
func (db *Database) CalculateOverallStatsAggregated(ctx context.Context) (int64, float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":              nil,
			"tracked_users":    bson.M{"$sum": 1},
			"total_volume_usd": bson.M{"$sum": "$total_volume_usd"},
		}}},
	}

	cursor, err := db.collection(model.UserStatsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		TrackedUsers   int64   `bson:"tracked_users"`
		TotalVolumeUsd float64 `bson:"total_volume_usd"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].TrackedUsers, results[0].TotalVolumeUsd, nil
}
