package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/types"
)

// SubscribeToActivityEvents opens the consumer on the activity queue and
// returns the decoded event stream. Failing to subscribe at startup is fatal;
// an indexer that cannot see activity has nothing to do.
func (s *Service) SubscribeToActivityEvents(ctx context.Context) <-chan types.ActivityEvent {
	events, err := s.queueManager.ConsumeActivityEvents(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to subscribe to activity events")
	}

	log.Info().
		Str("queue", s.cfg.Queue.QueueName).
		Msg("Subscribed to activity events")
	return events
}
