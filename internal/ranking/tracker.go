package ranking

import (
	"sort"
	"sync"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/types"
)

// TopN is the leaderboard window used for entered-top-N detection.
const TopN = 100

// ScoredUser is one bootstrap row loaded from persisted stats.
type ScoredUser struct {
	Address string
	Score   int
	Tier    types.Tier
}

// RankedUser is one leaderboard row with its 1-based rank.
type RankedUser struct {
	Rank    int
	Address string
	Score   int
	Tier    types.Tier
}

// RankChange describes how one score mutation moved a user in the global
// ordering. OldRank 0 means the user was previously unranked.
type RankChange struct {
	Address     string
	OldRank     int
	NewRank     int
	Score       int
	Tier        types.Tier
	NewLeader   bool
	EnteredTopN bool
	TierChanged bool
}

// RankMoved reports whether the user's position actually changed, as opposed
// to an in-place tier boundary crossing.
func (c *RankChange) RankMoved() bool {
	return c.OldRank != c.NewRank
}

type entry struct {
	address string
	score   int
	tier    types.Tier
}

// ranksBefore reports whether a sorts strictly before b: score descending,
// address ascending as the tie-break. Addresses are unique, so this is a
// total order and rank numbers are stable.
func ranksBefore(a, b entry) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.address < b.address
}

// Tracker keeps the ordered-by-score view of all known users. It owns the
// rank snapshot exclusively; every accessor takes the internal lock and no
// caller mutates the ordering from outside.
type Tracker struct {
	mu      sync.RWMutex
	entries []entry
	scores  map[string]int
}

func NewTracker() *Tracker {
	return &Tracker{
		scores: make(map[string]int),
	}
}

// Bootstrap replaces the index with the given persisted scores. Called once
// at startup; the snapshot is ephemeral and rebuilt from the source of truth
// after a restart.
func (t *Tracker) Bootstrap(users []ScoredUser) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = make([]entry, 0, len(users))
	t.scores = make(map[string]int, len(users))
	for _, u := range users {
		if _, seen := t.scores[u.Address]; seen {
			continue
		}
		t.entries = append(t.entries, entry{address: u.Address, score: u.Score, tier: u.Tier})
		t.scores[u.Address] = u.Score
	}
	sort.Slice(t.entries, func(i, j int) bool {
		return ranksBefore(t.entries[i], t.entries[j])
	})
}

// ApplyScoreChange repositions one user by its new score and reports the
// resulting rank movement. It returns nil when nothing material changed, in
// which case no rank broadcast must happen.
func (t *Tracker) ApplyScoreChange(address string, newScore int, tier types.Tier) *RankChange {
	t.mu.Lock()
	defer t.mu.Unlock()

	oldRank := 0
	oldTier := tier
	if oldScore, known := t.scores[address]; known {
		idx := t.indexOf(entry{address: address, score: oldScore})
		oldRank = idx + 1
		oldTier = t.entries[idx].tier
		t.entries = append(t.entries[:idx], t.entries[idx+1:]...)
	}

	newEntry := entry{address: address, score: newScore, tier: tier}
	insertAt := sort.Search(len(t.entries), func(i int) bool {
		return !ranksBefore(t.entries[i], newEntry)
	})
	t.entries = append(t.entries, entry{})
	copy(t.entries[insertAt+1:], t.entries[insertAt:])
	t.entries[insertAt] = newEntry
	t.scores[address] = newScore

	newRank := insertAt + 1
	if newRank == oldRank && tier == oldTier {
		return nil
	}

	return &RankChange{
		Address:     address,
		OldRank:     oldRank,
		NewRank:     newRank,
		Score:       newScore,
		Tier:        tier,
		NewLeader:   newRank == 1 && oldRank != 1,
		EnteredTopN: newRank <= TopN && (oldRank == 0 || oldRank > TopN),
		TierChanged: tier != oldTier,
	}
}

// indexOf locates an existing entry by its ordering key. The entry must be
// present; the score map guarantees that for known addresses.
func (t *Tracker) indexOf(e entry) int {
	idx := sort.Search(len(t.entries), func(i int) bool {
		return !ranksBefore(t.entries[i], e)
	})
	// equal scores cluster together; walk to the exact address
	for idx < len(t.entries) && t.entries[idx].address != e.address {
		idx++
	}
	return idx
}

// Rank returns the 1-based rank of an address, or 0 if unknown.
func (t *Tracker) Rank(address string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	score, known := t.scores[address]
	if !known {
		return 0
	}
	return t.indexOf(entry{address: address, score: score}) + 1
}

// Top returns the best n users in rank order.
func (t *Tracker) Top(n int) []RankedUser {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n > len(t.entries) {
		n = len(t.entries)
	}
	top := make([]RankedUser, 0, n)
	for i := 0; i < n; i++ {
		e := t.entries[i]
		top = append(top, RankedUser{Rank: i + 1, Address: e.address, Score: e.score, Tier: e.tier})
	}
	return top
}

// Leader returns the current rank-1 user, or nil when no users are tracked.
func (t *Tracker) Leader() *RankedUser {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.entries) == 0 {
		return nil
	}
	e := t.entries[0]
	return &RankedUser{Rank: 1, Address: e.address, Score: e.score, Tier: e.tier}
}

func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
