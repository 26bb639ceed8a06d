package services

import (
	"context"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/broadcaster"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/cache"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/config"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/db"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/queue"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/ranking"
)

type Service struct {
	cfg          *config.Config
	db           db.DbInterface
	tracker      *ranking.Tracker
	broadcaster  *broadcaster.Broadcaster
	queueManager *queue.QueueManager
	cache        *cache.RedisCache
	locks        *addressLocks
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	tracker *ranking.Tracker,
	bc *broadcaster.Broadcaster,
	qm *queue.QueueManager,
	leaderboardCache *cache.RedisCache,
) *Service {
	return &Service{
		cfg:          cfg,
		db:           db,
		tracker:      tracker,
		broadcaster:  bc,
		queueManager: qm,
		cache:        leaderboardCache,
		locks:        newAddressLocks(),
	}
}

func (s *Service) StartIndexerSync(ctx context.Context) {
	// Load persisted scores into the rank index
	s.BootstrapRankIndex(ctx)
	// Start consuming the activity queue
	events := s.SubscribeToActivityEvents(ctx)
	// Start the periodic overall stats recompute
	s.StartStatsPoller(ctx)
	// Keep processing events in the main thread
	s.StartActivityEventProcessor(ctx, events)
}
