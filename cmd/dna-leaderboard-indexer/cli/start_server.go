package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/api"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/broadcaster"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/cache"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/config"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/db"
	dbmodel "github.com/dnalabs-io/dna-leaderboard-indexer/internal/db/model"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/observability/metrics"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/observability/tracing"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/queue"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/ranking"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/services"
)

const shutdownTimeout = 10 * time.Second

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the DNA Leaderboard Indexer server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up leaderboard db model")
	}

	// create new db client
	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	qm, err := queue.NewQueueManager(&cfg.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize activity queue consumer")
	}
	defer qm.Shutdown()

	// the leaderboard cache is optional
	var leaderboardCache *cache.RedisCache
	if cfg.Cache != nil {
		leaderboardCache = cache.New(cfg.Cache)
		defer func() {
			if err := leaderboardCache.Close(); err != nil {
				log.Error().Err(err).Msg("error while closing leaderboard cache")
			}
		}()
	}

	tracker := ranking.NewTracker()
	bc := broadcaster.New()

	service := services.NewService(cfg, dbClient, tracker, bc, qm, leaderboardCache)

	apiServer := api.New(&cfg.Api, dbClient, tracker, bc, leaderboardCache)
	apiServer.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error while shutting down api server")
		}
	}()

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	service.StartIndexerSync(ctx)
	return nil
}
