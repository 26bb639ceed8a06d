package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/observability/metrics"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/utils/poller"
)

// StartStatsPoller starts the periodic overall stats recompute
func (s *Service) StartStatsPoller(ctx context.Context) {
	statsPoller := poller.NewPoller(
		s.cfg.Poller.StatsPollingInterval,
		metrics.RecordPollerDuration("stats", s.calculateAndUpdateStats),
	)
	go statsPoller.Start(ctx)
}

// calculateAndUpdateStats recomputes the overall stats with a MongoDB
// aggregation instead of loading every user document into memory.
func (s *Service) calculateAndUpdateStats(ctx context.Context) error {
	log := log.Ctx(ctx)

	startTime := time.Now()
	trackedUsers, totalVolumeUsd, err := s.db.CalculateOverallStatsAggregated(ctx)
	aggregationDuration := time.Since(startTime)

	log.Debug().
		Dur("aggregation_duration_ms", aggregationDuration).
		Msg("Stats aggregation completed")

	if err != nil {
		return fmt.Errorf("failed to calculate overall stats: %w", err)
	}

	// Nothing persisted yet, wait for the next poll
	if trackedUsers == 0 {
		log.Debug().Msg("No tracked users found - skipping stats update")
		return nil
	}

	if err := s.db.UpsertOverallStats(ctx, trackedUsers, totalVolumeUsd); err != nil {
		return fmt.Errorf("failed to upsert overall stats: %w", err)
	}

	log.Info().
		Int64("tracked_users", trackedUsers).
		Float64("total_volume_usd", totalVolumeUsd).
		Msg("Updated overall stats")

	metrics.RecordTrackedUsers(int(trackedUsers))
	metrics.RecordTotalVolume(totalVolumeUsd)

	return nil
}
