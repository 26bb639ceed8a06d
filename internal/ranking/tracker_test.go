package ranking

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/types"
	"github.com/dnalabs-io/dna-leaderboard-indexer/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_ApplyScoreChange(t *testing.T) {
	t.Run("first insert is reported as previously unranked", func(t *testing.T) {
		tracker := NewTracker()

		change := tracker.ApplyScoreChange("0xaa", 50, types.TierIntermediate)
		require.NotNil(t, change)
		assert.Equal(t, 0, change.OldRank)
		assert.Equal(t, 1, change.NewRank)
		assert.True(t, change.NewLeader)
		assert.True(t, change.EnteredTopN)
	})

	t.Run("no rank movement yields nil", func(t *testing.T) {
		tracker := NewTracker()
		tracker.Bootstrap([]ScoredUser{
			{Address: "0xaa", Score: 90, Tier: types.TierWhale},
			{Address: "0xbb", Score: 50, Tier: types.TierIntermediate},
			{Address: "0xcc", Score: 10, Tier: types.TierNovice},
		})

		// 0xbb moves from 50 to 55: still rank 2, still intermediate
		change := tracker.ApplyScoreChange("0xbb", 55, types.TierIntermediate)
		assert.Nil(t, change)
		assert.Equal(t, 2, tracker.Rank("0xbb"))
	})

	t.Run("tier boundary crossed in place is reported", func(t *testing.T) {
		tracker := NewTracker()
		tracker.Bootstrap([]ScoredUser{
			{Address: "0xaa", Score: 90, Tier: types.TierWhale},
			{Address: "0xbb", Score: 50, Tier: types.TierIntermediate},
			{Address: "0xcc", Score: 10, Tier: types.TierNovice},
		})

		// 0xbb moves from 50 to 60: still rank 2, but now expert
		change := tracker.ApplyScoreChange("0xbb", 60, types.TierExpert)
		require.NotNil(t, change)
		assert.True(t, change.TierChanged)
		assert.False(t, change.RankMoved())
		assert.Equal(t, 2, change.OldRank)
		assert.Equal(t, 2, change.NewRank)
		assert.False(t, change.NewLeader)
	})

	t.Run("overtaking emits a rank change", func(t *testing.T) {
		tracker := NewTracker()
		tracker.Bootstrap([]ScoredUser{
			{Address: "0xaa", Score: 90, Tier: types.TierWhale},
			{Address: "0xbb", Score: 50, Tier: types.TierIntermediate},
		})

		change := tracker.ApplyScoreChange("0xbb", 95, types.TierWhale)
		require.NotNil(t, change)
		assert.Equal(t, 2, change.OldRank)
		assert.Equal(t, 1, change.NewRank)
		assert.True(t, change.NewLeader)
		assert.False(t, change.EnteredTopN)
		assert.Equal(t, 2, tracker.Rank("0xaa"))
	})

	t.Run("new leader fires only on leadership change", func(t *testing.T) {
		tracker := NewTracker()
		tracker.Bootstrap([]ScoredUser{
			{Address: "0xaa", Score: 90, Tier: types.TierWhale},
			{Address: "0xbb", Score: 50, Tier: types.TierIntermediate},
		})

		// leader improves its own score, stays rank 1
		change := tracker.ApplyScoreChange("0xaa", 95, types.TierWhale)
		assert.Nil(t, change)

		// leader drops below 0xbb
		change = tracker.ApplyScoreChange("0xaa", 10, types.TierNovice)
		require.NotNil(t, change)
		assert.False(t, change.NewLeader)
		assert.Equal(t, 1, change.OldRank)
		assert.Equal(t, 2, change.NewRank)
	})

	t.Run("equal scores rank by address ascending", func(t *testing.T) {
		tracker := NewTracker()
		tracker.Bootstrap([]ScoredUser{
			{Address: "0xbbbb", Score: 72, Tier: types.TierExpert},
			{Address: "0xaaaa", Score: 72, Tier: types.TierExpert},
		})

		assert.Equal(t, 1, tracker.Rank("0xaaaa"))
		assert.Equal(t, 2, tracker.Rank("0xbbbb"))
	})

	t.Run("entered top N from outside the window", func(t *testing.T) {
		tracker := NewTracker()
		users := make([]ScoredUser, 0, TopN+1)
		for i := 0; i <= TopN; i++ {
			users = append(users, ScoredUser{
				Address: fmt.Sprintf("0x%04x", i),
				Score:   100 - i,
				Tier:    types.TierNovice,
			})
		}
		tracker.Bootstrap(users)

		last := users[TopN].Address
		require.Greater(t, tracker.Rank(last), TopN)

		change := tracker.ApplyScoreChange(last, 100, types.TierWhale)
		require.NotNil(t, change)
		assert.True(t, change.EnteredTopN)
		assert.LessOrEqual(t, change.NewRank, TopN)
	})
}

func TestTracker_RanksArePermutation(t *testing.T) {
	tracker := NewTracker()
	rng := rand.New(rand.NewSource(42))

	const n = 250
	addresses := make([]string, n)
	for i := range addresses {
		addr, err := testutil.RandomEthAddress()
		require.NoError(t, err)
		addresses[i] = addr
		tracker.ApplyScoreChange(addresses[i], rng.Intn(101), types.TierNovice)
	}

	// random churn
	for i := 0; i < 1000; i++ {
		addr := addresses[rng.Intn(n)]
		tracker.ApplyScoreChange(addr, rng.Intn(101), types.TierNovice)
	}

	require.Equal(t, n, tracker.Len())
	seen := make(map[int]string, n)
	for _, addr := range addresses {
		rank := tracker.Rank(addr)
		require.GreaterOrEqual(t, rank, 1)
		require.LessOrEqual(t, rank, n)
		prev, dup := seen[rank]
		require.False(t, dup, "rank %d shared by %s and %s", rank, prev, addr)
		seen[rank] = addr
	}
}

func TestTracker_TopAndLeader(t *testing.T) {
	tracker := NewTracker()
	assert.Nil(t, tracker.Leader())
	assert.Empty(t, tracker.Top(10))

	tracker.Bootstrap([]ScoredUser{
		{Address: "0xcc", Score: 30, Tier: types.TierBeginner},
		{Address: "0xaa", Score: 80, Tier: types.TierWhale},
		{Address: "0xbb", Score: 55, Tier: types.TierIntermediate},
	})

	leader := tracker.Leader()
	require.NotNil(t, leader)
	assert.Equal(t, "0xaa", leader.Address)

	top := tracker.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, []RankedUser{
		{Rank: 1, Address: "0xaa", Score: 80, Tier: types.TierWhale},
		{Rank: 2, Address: "0xbb", Score: 55, Tier: types.TierIntermediate},
	}, top)

	// asking for more rows than users returns everyone
	assert.Len(t, tracker.Top(10), 3)
}

func TestTracker_BootstrapSkipsDuplicates(t *testing.T) {
	tracker := NewTracker()
	tracker.Bootstrap([]ScoredUser{
		{Address: "0xaa", Score: 80, Tier: types.TierWhale},
		{Address: "0xaa", Score: 10, Tier: types.TierNovice},
	})
	assert.Equal(t, 1, tracker.Len())
	assert.Equal(t, 1, tracker.Rank("0xaa"))
}
