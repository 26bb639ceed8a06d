package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/types"
)

func TestBuildActivityDelta(t *testing.T) {
	tests := []struct {
		name     string
		event    types.ActivityEvent
		expected types.ActivityDelta
	}{
		{
			name: "swap counts volume",
			event: types.ActivityEvent{
				Address:      addrA,
				ActivityType: types.ActivitySwap,
				AmountUsd:    1500,
				Timestamp:    10 * dayMs,
			},
			expected: types.ActivityDelta{VolumeUsd: 1500, ActivityTs: 10 * dayMs},
		},
		{
			name: "position open counts volume and position",
			event: types.ActivityEvent{
				Address:      addrA,
				ActivityType: types.ActivityPositionOpen,
				AmountUsd:    2000,
				Timestamp:    10 * dayMs,
			},
			expected: types.ActivityDelta{VolumeUsd: 2000, PositionCount: 1, ActivityTs: 10 * dayMs},
		},
		{
			name: "position close counts volume only",
			event: types.ActivityEvent{
				Address:      addrA,
				ActivityType: types.ActivityPositionClose,
				AmountUsd:    2000,
				Timestamp:    10 * dayMs,
			},
			expected: types.ActivityDelta{VolumeUsd: 2000, ActivityTs: 10 * dayMs},
		},
		{
			name: "fee collection counts fees",
			event: types.ActivityEvent{
				Address:      addrA,
				ActivityType: types.ActivityFeeCollection,
				FeesUsd:      35.5,
				Timestamp:    10 * dayMs,
			},
			expected: types.ActivityDelta{FeesUsd: 35.5, ActivityTs: 10 * dayMs},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			delta, err := buildActivityDelta(tc.event)
			require.Nil(t, err)
			assert.Equal(t, tc.expected, *delta)
		})
	}
}

func TestBuildActivityDeltaRejects(t *testing.T) {
	tests := []struct {
		name  string
		event types.ActivityEvent
	}{
		{
			name: "negative amount",
			event: types.ActivityEvent{
				Address:      addrA,
				ActivityType: types.ActivitySwap,
				AmountUsd:    -1,
				Timestamp:    10 * dayMs,
			},
		},
		{
			name: "negative fees",
			event: types.ActivityEvent{
				Address:      addrA,
				ActivityType: types.ActivityFeeCollection,
				FeesUsd:      -0.5,
				Timestamp:    10 * dayMs,
			},
		},
		{
			name: "unknown activity type",
			event: types.ActivityEvent{
				Address:      addrA,
				ActivityType: "airdrop_claim",
				AmountUsd:    100,
				Timestamp:    10 * dayMs,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			delta, err := buildActivityDelta(tc.event)
			require.NotNil(t, err)
			assert.Nil(t, delta)
			assert.Equal(t, types.ValidationError, err.ErrorCode)
		})
	}
}

func TestProcessActivityEvent(t *testing.T) {
	ctx := context.Background()
	srv, database, _ := newTestService(t)

	err := srv.processActivityEvent(ctx, types.ActivityEvent{
		Address:      addrA,
		ActivityType: types.ActivityPositionOpen,
		PoolID:       "pool-7",
		AmountUsd:    25_000,
		Timestamp:    10 * dayMs,
	})
	require.Nil(t, err)

	stats, dbErr := database.GetUserStats(ctx, addrA)
	require.NoError(t, dbErr)
	assert.Equal(t, int64(1), stats.PositionCount)
	assert.Equal(t, float64(25_000), stats.TotalVolumeUsd)
}
