package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/broadcaster"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/db"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/db/model"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/observability/metrics"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/ranking"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/score"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/types"
	"github.com/dnalabs-io/dna-leaderboard-indexer/pkg"
)

const msPerDay = 24 * 60 * 60 * 1000

// HandleActivity runs the recompute-then-broadcast pipeline for one activity
// event: merge the delta into persisted aggregates, recompute score and tier,
// persist, reposition in the rank index, then fan out deltas. The whole
// sequence holds the per-address lock, so updates for one user never
// interleave; updates for different users proceed concurrently.
func (s *Service) HandleActivity(ctx context.Context, event types.ActivityEvent, delta types.ActivityDelta) *types.Error {
	address, err := pkg.NormalizeEthAddress(event.Address)
	if err != nil {
		return types.NewValidationFailedError(
			fmt.Errorf("invalid activity address %q: %w", event.Address, err),
		)
	}

	unlock := s.locks.lock(address)
	defer unlock()

	stats, dbErr := s.db.GetUserStats(ctx, address)
	if dbErr != nil {
		if !db.IsNotFoundError(dbErr) {
			return types.NewInternalServiceError(
				fmt.Errorf("failed to get user stats: %w", dbErr),
			)
		}
		stats = model.NewUserStatsDocument(address)
	}

	mergeActivityDelta(stats, delta)

	newScore, tier, scoreErr := score.ComputeScore(aggregatesFrom(stats, delta.ActivityTs))
	if scoreErr != nil {
		return scoreErr
	}
	stats.DnaScore = newScore
	stats.Tier = tier.String()
	stats.LastUpdated = time.Now().Unix()

	// A persistence failure is a hard stop for this event: the rank index
	// and subscribers must never observe a score the database did not accept.
	if dbErr := s.db.SaveUserStats(ctx, stats); dbErr != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to save user stats: %w", dbErr),
		)
	}

	change := s.tracker.ApplyScoreChange(address, newScore, tier)
	metrics.RecordTrackedUsers(s.tracker.Len())

	s.broadcastActivity(ctx, event, stats, change)
	return nil
}

// broadcastActivity emits the delta messages for one processed event. The
// user_action and user_update frames always go out; ranking frames only when
// the rank index reported movement.
func (s *Service) broadcastActivity(
	ctx context.Context,
	event types.ActivityEvent,
	stats *model.UserStatsDocument,
	change *ranking.RankChange,
) {
	now := time.Now().UnixMilli()

	s.broadcast(broadcaster.NewUserActionMessage(
		stats.Address,
		event.ActivityType.String(),
		event.PoolID,
		event.AmountUsd,
		now,
	))

	s.broadcast(broadcaster.NewUserUpdateMessage(
		stats.Address,
		stats.DnaScore,
		stats.Tier,
		now,
	))

	if change == nil {
		return
	}

	// A tier boundary crossed in place already reached subscribers through
	// user_update; ranking frames go out only for actual movement.
	if change.RankMoved() {
		s.broadcast(broadcaster.NewRankingChangesMessage([]broadcaster.RankingChange{
			{
				Address:    change.Address,
				OldRank:    change.OldRank,
				NewRank:    change.NewRank,
				RankChange: change.OldRank - change.NewRank,
				DnaScore:   change.Score,
				Tier:       change.Tier.String(),
			},
		}, now))
	}

	if change.NewLeader {
		metrics.RecordLeaderChange()
		s.broadcast(broadcaster.NewLeaderMessage(&broadcaster.LeaderInfo{
			Address:        stats.Address,
			EnsName:        stats.EnsName,
			DnaScore:       stats.DnaScore,
			Tier:           stats.Tier,
			TotalPositions: stats.PositionCount,
			TotalVolumeUsd: stats.TotalVolumeUsd,
		}, now))
	}

	// a rank movement stales any cached leaderboard page
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Debug().Err(err).Msg("Failed to invalidate leaderboard cache")
		}
	}
}

func (s *Service) broadcast(msg broadcaster.Message) {
	startTime := time.Now()
	result := s.broadcaster.Broadcast(msg)
	metrics.RecordBroadcastDuration(time.Since(startTime), msg.Type.String())

	if result.Failed > 0 {
		log.Debug().
			Str("messageType", msg.Type.String()).
			Int("sent", result.Sent).
			Int("failed", result.Failed).
			Msg("Broadcast pruned failed subscribers")
	}
}

// mergeActivityDelta folds one activity delta into the persisted aggregates.
func mergeActivityDelta(stats *model.UserStatsDocument, delta types.ActivityDelta) {
	stats.TotalVolumeUsd += delta.VolumeUsd
	stats.TotalFeesUsd += delta.FeesUsd
	stats.PositionCount += delta.PositionCount

	if stats.FirstActivityTs == 0 || delta.ActivityTs < stats.FirstActivityTs {
		stats.FirstActivityTs = delta.ActivityTs
	}
	if delta.ActivityTs > stats.LastActivityTs {
		stats.LastActivityTs = delta.ActivityTs
	}

	// count each calendar day with activity once
	activityDay := delta.ActivityTs / msPerDay
	if stats.ActiveDayCount == 0 || activityDay != stats.LastActiveDay {
		stats.ActiveDayCount++
		stats.LastActiveDay = activityDay
	}
}

// aggregatesFrom projects the persisted stats onto the score engine's input.
func aggregatesFrom(stats *model.UserStatsDocument, nowMs int64) score.ActivityAggregates {
	daysSinceFirst := int64(0)
	if stats.FirstActivityTs > 0 && nowMs > stats.FirstActivityTs {
		daysSinceFirst = (nowMs - stats.FirstActivityTs) / msPerDay
	}

	return score.ActivityAggregates{
		VolumeUsd:      stats.TotalVolumeUsd,
		FeesEarnedUsd:  stats.TotalFeesUsd,
		PositionCount:  stats.PositionCount,
		ActiveDays:     stats.ActiveDayCount,
		DaysSinceFirst: daysSinceFirst,
	}
}
