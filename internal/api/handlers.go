package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/db"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/ranking"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/types"
	"github.com/dnalabs-io/dna-leaderboard-indexer/pkg"
)

// LeaderboardEntry is one row of the public leaderboard response.
type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	Address        string  `json:"address"`
	EnsName        string  `json:"ensName,omitempty"`
	DnaScore       int     `json:"dnaScore"`
	Tier           string  `json:"tier"`
	TotalVolumeUsd float64 `json:"totalVolumeUsd"`
	TotalFeesUsd   float64 `json:"totalFeesUsd"`
	PositionCount  int64   `json:"positionCount"`
}

// UserResponse is the public per-user stats payload.
type UserResponse struct {
	Address        string  `json:"address"`
	EnsName        string  `json:"ensName,omitempty"`
	DnaScore       int     `json:"dnaScore"`
	Tier           string  `json:"tier"`
	Rank           int     `json:"rank,omitempty"`
	TotalVolumeUsd float64 `json:"totalVolumeUsd"`
	TotalFeesUsd   float64 `json:"totalFeesUsd"`
	PositionCount  int64   `json:"positionCount"`
	ActiveDayCount int64   `json:"activeDayCount"`
	FirstActivity  int64   `json:"firstActivityTs,omitempty"`
	LastActivity   int64   `json:"lastActivityTs,omitempty"`
}

type apiResponse struct {
	Data any `json:"data"`
}

type apiError struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode api response")
	}
}

func writeError(w http.ResponseWriter, err *types.Error) {
	writeJSON(w, err.StatusCode, apiError{
		ErrorCode: err.ErrorCode.String(),
		Message:   err.Error(),
	})
}

// LeaderboardHandler serves the current top of the leaderboard. The default
// page is cached in redis under a short TTL; custom limits always hit the
// database.
func (s *Server) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := int64(ranking.TopN)
	useCache := true
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			writeError(w, types.NewValidationFailedError(
				errors.New("limit must be a positive integer"),
			))
			return
		}
		if parsed > s.cfg.MaxPageSize {
			parsed = s.cfg.MaxPageSize
		}
		limit = parsed
		useCache = false
	}

	if useCache && s.cache != nil {
		cached, err := s.cache.GetLeaderboard(ctx)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("Leaderboard cache read failed")
		} else if cached != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write(cached); err != nil {
				log.Ctx(ctx).Error().Err(err).Msg("Failed to write cached leaderboard")
			}
			return
		}
	}

	entries, err := s.loadLeaderboard(r, limit)
	if err != nil {
		writeError(w, types.NewInternalServiceError(err))
		return
	}

	body, marshalErr := json.Marshal(apiResponse{Data: entries})
	if marshalErr != nil {
		writeError(w, types.NewInternalServiceError(marshalErr))
		return
	}

	if useCache && s.cache != nil {
		if err := s.cache.SetLeaderboard(ctx, body); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("Leaderboard cache write failed")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to write leaderboard response")
	}
}

func (s *Server) loadLeaderboard(r *http.Request, limit int64) ([]LeaderboardEntry, error) {
	docs, err := s.db.GetTopUsersByScore(r.Context(), limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, LeaderboardEntry{
			Rank:           s.tracker.Rank(doc.Address),
			Address:        doc.Address,
			EnsName:        doc.EnsName,
			DnaScore:       doc.DnaScore,
			Tier:           doc.Tier,
			TotalVolumeUsd: doc.TotalVolumeUsd,
			TotalFeesUsd:   doc.TotalFeesUsd,
			PositionCount:  doc.PositionCount,
		})
	}
	return entries, nil
}

// UserHandler serves the persisted stats and live rank for one address.
func (s *Server) UserHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	address, err := pkg.NormalizeEthAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, types.NewValidationFailedError(err))
		return
	}

	stats, dbErr := s.db.GetUserStats(ctx, address)
	if dbErr != nil {
		if db.IsNotFoundError(dbErr) {
			writeError(w, types.NewErrorWithMsg(
				http.StatusNotFound, types.NotFound, "user not found",
			))
			return
		}
		writeError(w, types.NewInternalServiceError(dbErr))
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{Data: UserResponse{
		Address:        stats.Address,
		EnsName:        stats.EnsName,
		DnaScore:       stats.DnaScore,
		Tier:           stats.Tier,
		Rank:           s.tracker.Rank(stats.Address),
		TotalVolumeUsd: stats.TotalVolumeUsd,
		TotalFeesUsd:   stats.TotalFeesUsd,
		PositionCount:  stats.PositionCount,
		ActiveDayCount: stats.ActiveDayCount,
		FirstActivity:  stats.FirstActivityTs,
		LastActivity:   stats.LastActivityTs,
	}})
}

// HealthcheckHandler reports liveness of the service and its database.
func (s *Server) HealthcheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeError(w, types.NewInternalServiceError(err))
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Data: "ok"})
}
