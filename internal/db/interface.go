package db

import (
	"context"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/db/model"
)

type DbInterface interface {
	Ping(ctx context.Context) error
	GetUserStats(ctx context.Context, address string) (*model.UserStatsDocument, error)
	SaveUserStats(ctx context.Context, doc *model.UserStatsDocument) error
	GetAllScores(ctx context.Context) ([]model.UserScore, error)
	GetTopUsersByScore(ctx context.Context, limit int64) ([]model.UserStatsDocument, error)
	CalculateOverallStatsAggregated(ctx context.Context) (int64, float64, error)
	UpsertOverallStats(ctx context.Context, trackedUsers int64, totalVolumeUsd float64) error
}
