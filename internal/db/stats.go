package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/db/model"
)

// UpsertOverallStats updates or inserts overall stats
func (db *Database) UpsertOverallStats(
	ctx context.Context,
	trackedUsers int64,
	totalVolumeUsd float64,
) error {
	filter := bson.M{"_id": "overall_stats"}
	update := bson.M{
		"$set": bson.M{
			"tracked_users":    trackedUsers,
			"total_volume_usd": totalVolumeUsd,
			"last_updated":     time.Now().Unix(),
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.OverallStatsCollection).UpdateOne(ctx, filter, update, opts)
	return err
}
