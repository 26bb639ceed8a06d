package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/broadcaster"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/cache"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/config"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/db"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/ranking"
)

// Server exposes the read-only leaderboard endpoints and the websocket
// subscriber surface. All writes flow through the queue consumer, never
// through HTTP.
type Server struct {
	cfg         *config.ApiConfig
	db          db.DbInterface
	tracker     *ranking.Tracker
	broadcaster *broadcaster.Broadcaster
	cache       *cache.RedisCache

	httpServer *http.Server
}

func New(
	cfg *config.ApiConfig,
	database db.DbInterface,
	tracker *ranking.Tracker,
	bc *broadcaster.Broadcaster,
	leaderboardCache *cache.RedisCache,
) *Server {
	srv := &Server{
		cfg:         cfg,
		db:          database,
		tracker:     tracker,
		broadcaster: bc,
		cache:       leaderboardCache,
	}

	router := chi.NewRouter()
	router.Get("/healthcheck", srv.HealthcheckHandler)
	router.Get("/v1/leaderboard", srv.LeaderboardHandler)
	router.Get("/v1/users/{address}", srv.UserHandler)
	router.Get("/ws", srv.WebsocketHandler)

	srv.httpServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return srv
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() {
	go func() {
		log.Info().Msgf("Starting api server on %s", s.cfg.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting api server on %s", s.cfg.Address())
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.broadcaster.Shutdown()
	return s.httpServer.Shutdown(ctx)
}
