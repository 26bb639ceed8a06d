package services

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/observability/metrics"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/ranking"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/types"
)

const (
	bootstrapMaxRetries    = 10
	bootstrapRetryInterval = 10 * time.Second
)

// BootstrapRankIndex loads every persisted score into the in-memory rank
// index. The service must not consume activity events before this completes,
// otherwise rank deltas would be computed against a partial ordering, so the
// load blocks startup and a persistent database failure is fatal.
func (s *Service) BootstrapRankIndex(ctx context.Context) {
	err := retry.Do(
		func() error {
			return s.loadPersistedScores(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(bootstrapMaxRetries),
		retry.Delay(bootstrapRetryInterval),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Err(err).
				Uint("attempt", n+1).
				Uint("max_attempts", bootstrapMaxRetries).
				Msg("Failed to bootstrap rank index, retrying")
		}),
	)
	if err != nil {
		log.Fatal().
			Err(err).
			Msg("Failed to bootstrap rank index after max retries, exiting")
	}
}

func (s *Service) loadPersistedScores(ctx context.Context) error {
	scores, err := s.db.GetAllScores(ctx)
	if err != nil {
		return err
	}

	users := make([]ranking.ScoredUser, 0, len(scores))
	for _, sc := range scores {
		users = append(users, ranking.ScoredUser{
			Address: sc.Address,
			Score:   sc.DnaScore,
			Tier:    types.Tier(sc.Tier),
		})
	}
	s.tracker.Bootstrap(users)
	metrics.RecordTrackedUsers(s.tracker.Len())

	log.Info().
		Int("tracked_users", s.tracker.Len()).
		Msg("Successfully bootstrapped rank index")
	return nil
}
