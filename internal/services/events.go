package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/observability/metrics"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/types"
)

const activityWorkerCount = 8

// StartActivityEventProcessor drains the activity channel with a small
// worker pool. Per-address ordering is enforced by the coordinator's lock
// table, not by the pool; cross-address ordering is unspecified.
func (s *Service) StartActivityEventProcessor(ctx context.Context, events <-chan types.ActivityEvent) {
	var wg sync.WaitGroup
	for i := 0; i < activityWorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for event := range events {
				startTime := time.Now()
				err := s.processActivityEvent(ctx, event)
				metrics.RecordActivityProcessingDuration(
					time.Since(startTime),
					event.ActivityType.String(),
					err != nil,
				)
				if err != nil {
					log.Error().
						Err(err).
						Str("address", event.Address).
						Str("activityType", event.ActivityType.String()).
						Msg("Failed to process activity event")
				}
			}
		}()
	}
	wg.Wait()
	log.Info().Msg("Activity event processor stopped")
}

// Entry point for processing activity events
func (s *Service) processActivityEvent(ctx context.Context, event types.ActivityEvent) *types.Error {
	delta, err := buildActivityDelta(event)
	if err != nil {
		return err
	}

	switch event.ActivityType {
	case types.ActivitySwap:
		log.Debug().Str("address", event.Address).Msg("Processing swap event")
	case types.ActivityPositionOpen:
		log.Debug().Str("address", event.Address).Msg("Processing position open event")
	case types.ActivityPositionClose:
		log.Debug().Str("address", event.Address).Msg("Processing position close event")
	case types.ActivityFeeCollection:
		log.Debug().Str("address", event.Address).Msg("Processing fee collection event")
	}

	return s.HandleActivity(ctx, event, *delta)
}

// buildActivityDelta maps one decoded activity event onto the aggregate
// patch it contributes. Unknown activity types are rejected, not ignored.
func buildActivityDelta(event types.ActivityEvent) (*types.ActivityDelta, *types.Error) {
	if event.AmountUsd < 0 {
		return nil, types.NewValidationFailedError(
			fmt.Errorf("activity event has negative amount: %f", event.AmountUsd),
		)
	}
	if event.FeesUsd < 0 {
		return nil, types.NewValidationFailedError(
			fmt.Errorf("activity event has negative fees: %f", event.FeesUsd),
		)
	}

	delta := &types.ActivityDelta{ActivityTs: event.Timestamp}
	switch event.ActivityType {
	case types.ActivitySwap:
		delta.VolumeUsd = event.AmountUsd
	case types.ActivityPositionOpen:
		delta.VolumeUsd = event.AmountUsd
		delta.PositionCount = 1
	case types.ActivityPositionClose:
		delta.VolumeUsd = event.AmountUsd
	case types.ActivityFeeCollection:
		delta.FeesUsd = event.FeesUsd
	default:
		return nil, types.NewValidationFailedError(
			fmt.Errorf("unknown activity type: %s", event.ActivityType),
		)
	}

	return delta, nil
}
