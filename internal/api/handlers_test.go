package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/broadcaster"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/config"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/db"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/db/model"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/ranking"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/types"
)

type stubDb struct {
	users   map[string]model.UserStatsDocument
	top     []model.UserStatsDocument
	pingErr error
}

func (s *stubDb) Ping(_ context.Context) error { return s.pingErr }

func (s *stubDb) GetUserStats(_ context.Context, address string) (*model.UserStatsDocument, error) {
	doc, ok := s.users[address]
	if !ok {
		return nil, &db.NotFoundError{Key: address, Message: "user stats not found"}
	}
	return &doc, nil
}

func (s *stubDb) SaveUserStats(_ context.Context, _ *model.UserStatsDocument) error { return nil }

func (s *stubDb) GetAllScores(_ context.Context) ([]model.UserScore, error) { return nil, nil }

func (s *stubDb) GetTopUsersByScore(_ context.Context, limit int64) ([]model.UserStatsDocument, error) {
	if limit < int64(len(s.top)) {
		return s.top[:limit], nil
	}
	return s.top, nil
}

func (s *stubDb) CalculateOverallStatsAggregated(_ context.Context) (int64, float64, error) {
	return 0, 0, nil
}

func (s *stubDb) UpsertOverallStats(_ context.Context, _ int64, _ float64) error { return nil }

func newTestServer(t *testing.T, database db.DbInterface) *Server {
	t.Helper()

	cfg := &config.ApiConfig{
		Host:        "127.0.0.1",
		Port:        8080,
		MaxPageSize: 100,
	}
	require.NoError(t, cfg.Validate())

	return New(cfg, database, ranking.NewTracker(), broadcaster.New(), nil)
}

func userDoc(address string, score int, volumeUsd float64) model.UserStatsDocument {
	return model.UserStatsDocument{
		Address:        address,
		DnaScore:       score,
		Tier:           types.TierForScore(score).String(),
		TotalVolumeUsd: volumeUsd,
		PositionCount:  3,
	}
}

func TestLeaderboardHandler(t *testing.T) {
	addrA := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	addrB := "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

	database := &stubDb{
		top: []model.UserStatsDocument{
			userDoc(addrA, 85, 2_000_000),
			userDoc(addrB, 42, 50_000),
		},
	}
	srv := newTestServer(t, database)
	srv.tracker.Bootstrap([]ranking.ScoredUser{
		{Address: addrA, Score: 85, Tier: types.TierWhale},
		{Address: addrB, Score: 42, Tier: types.TierIntermediate},
	})

	rec := httptest.NewRecorder()
	srv.LeaderboardHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []LeaderboardEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)

	assert.Equal(t, 1, resp.Data[0].Rank)
	assert.Equal(t, addrA, resp.Data[0].Address)
	assert.Equal(t, "WHALE", resp.Data[0].Tier)
	assert.Equal(t, 2, resp.Data[1].Rank)
	assert.Equal(t, addrB, resp.Data[1].Address)
}

func TestLeaderboardHandlerLimit(t *testing.T) {
	database := &stubDb{
		top: []model.UserStatsDocument{
			userDoc("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 85, 2_000_000),
			userDoc("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", 42, 50_000),
		},
	}
	srv := newTestServer(t, database)

	t.Run("custom limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.LeaderboardHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard?limit=1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Data []LeaderboardEntry `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 1)
	})

	t.Run("invalid limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.LeaderboardHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard?limit=abc", nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp apiError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, types.ValidationError.String(), resp.ErrorCode)
	})
}

func TestUserHandler(t *testing.T) {
	addr := "0xcccccccccccccccccccccccccccccccccccccccc"
	database := &stubDb{
		users: map[string]model.UserStatsDocument{
			addr: userDoc(addr, 61, 300_000),
		},
	}
	srv := newTestServer(t, database)
	srv.tracker.Bootstrap([]ranking.ScoredUser{
		{Address: addr, Score: 61, Tier: types.TierExpert},
	})

	router := chi.NewRouter()
	router.Get("/v1/users/{address}", srv.UserHandler)

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		// Mixed case in the path resolves to the same user
		router.ServeHTTP(rec, httptest.NewRequest(
			http.MethodGet, "/v1/users/0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC", nil,
		))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Data UserResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, addr, resp.Data.Address)
		assert.Equal(t, 61, resp.Data.DnaScore)
		assert.Equal(t, "EXPERT", resp.Data.Tier)
		assert.Equal(t, 1, resp.Data.Rank)
	})

	t.Run("not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(
			http.MethodGet, "/v1/users/0xdddddddddddddddddddddddddddddddddddddddd", nil,
		))

		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid address", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users/garbage", nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthcheckHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := newTestServer(t, &stubDb{})
		rec := httptest.NewRecorder()
		srv.HealthcheckHandler(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("db down", func(t *testing.T) {
		srv := newTestServer(t, &stubDb{pingErr: errors.New("no reachable servers")})
		rec := httptest.NewRecorder()
		srv.HealthcheckHandler(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
