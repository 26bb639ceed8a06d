package db

import (
	"context"
	"time"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/db/model"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/observability/metrics"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) GetUserStats(ctx context.Context, address string) (result *model.UserStatsDocument, err error) {
	//nolint:errcheck
	d.run("GetUserStats", func() error {
		result, err = d.db.GetUserStats(ctx, address)
		return err
	})
	return
}

func (d *DbWithMetrics) SaveUserStats(ctx context.Context, doc *model.UserStatsDocument) error {
	return d.run("SaveUserStats", func() error {
		return d.db.SaveUserStats(ctx, doc)
	})
}

func (d *DbWithMetrics) GetAllScores(ctx context.Context) (result []model.UserScore, err error) {
	//nolint:errcheck
	d.run("GetAllScores", func() error {
		result, err = d.db.GetAllScores(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) GetTopUsersByScore(ctx context.Context, limit int64) (result []model.UserStatsDocument, err error) {
	//nolint:errcheck
	d.run("GetTopUsersByScore", func() error {
		result, err = d.db.GetTopUsersByScore(ctx, limit)
		return err
	})
	return
}

func (d *DbWithMetrics) CalculateOverallStatsAggregated(ctx context.Context) (users int64, volume float64, err error) {
	//nolint:errcheck
	d.run("CalculateOverallStatsAggregated", func() error {
		users, volume, err = d.db.CalculateOverallStatsAggregated(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertOverallStats(ctx context.Context, trackedUsers int64, totalVolumeUsd float64) error {
	return d.run("UpsertOverallStats", func() error {
		return d.db.UpsertOverallStats(ctx, trackedUsers, totalVolumeUsd)
	})
}

// run is private method that executes passed lambda function and send metrics data with spent time, method name
// and an error if any. It returns the error from the lambda function for convenience
func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	metrics.RecordDbLatency(duration, method, err != nil)
	return err
}
