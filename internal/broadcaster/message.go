package broadcaster

import (
	"encoding/json"

	"github.com/dnalabs-io/dna-leaderboard-indexer/pkg"
)

type MessageType string

func (m MessageType) String() string {
	return string(m)
}

// Outbound message kinds. Field names are part of the wire contract consumed
// by leaderboard clients; renaming one requires a version bump in the type
// discriminator.
const (
	MessageLeaderboardUpdate MessageType = "leaderboard_update"
	MessageRankingChanges    MessageType = "ranking_changes"
	MessageNewLeader         MessageType = "new_leader"
	MessageUserUpdate        MessageType = "user_update"
	MessageUserAction        MessageType = "user_action"
)

const (
	UpdateTypeIncremental = "incremental"
	UpdateTypeFullRefresh = "full_refresh"
)

// Message is a single JSON frame pushed to subscribers. Timestamp is epoch
// milliseconds.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp int64       `json:"timestamp"`

	UpdateType string          `json:"updateType,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`

	Changes []RankingChange `json:"changes,omitempty"`
	Leader  *LeaderInfo     `json:"leader,omitempty"`

	Address    string  `json:"address,omitempty"`
	DnaScore   *int    `json:"dnaScore,omitempty"`
	Tier       string  `json:"tier,omitempty"`
	ActionType string  `json:"actionType,omitempty"`
	PoolID     string  `json:"poolId,omitempty"`
	AmountUsd  float64 `json:"amountUsd,omitempty"`
}

// RankingChange is one row of a ranking_changes frame. RankChange is always
// oldRank - newRank, so positive means the user moved up.
type RankingChange struct {
	Address    string `json:"address"`
	OldRank    int    `json:"oldRank"`
	NewRank    int    `json:"newRank"`
	RankChange int    `json:"rankChange"`
	DnaScore   int    `json:"dnaScore"`
	Tier       string `json:"tier"`
}

// LeaderInfo describes the current rank-1 user in a new_leader frame.
type LeaderInfo struct {
	Address        string  `json:"address"`
	EnsName        string  `json:"ensName,omitempty"`
	DnaScore       int     `json:"dnaScore"`
	Tier           string  `json:"tier"`
	TotalPositions int64   `json:"totalPositions"`
	TotalVolumeUsd float64 `json:"totalVolumeUsd"`
}

func NewRankingChangesMessage(changes []RankingChange, timestamp int64) Message {
	return Message{
		Type:      MessageRankingChanges,
		Timestamp: timestamp,
		Changes:   changes,
	}
}

func NewLeaderMessage(leader *LeaderInfo, timestamp int64) Message {
	return Message{
		Type:      MessageNewLeader,
		Timestamp: timestamp,
		Leader:    leader,
	}
}

func NewUserUpdateMessage(address string, score int, tier string, timestamp int64) Message {
	return Message{
		Type:      MessageUserUpdate,
		Timestamp: timestamp,
		Address:   address,
		DnaScore:  pkg.Ptr(score),
		Tier:      tier,
	}
}

func NewUserActionMessage(address, actionType, poolID string, amountUsd float64, timestamp int64) Message {
	return Message{
		Type:       MessageUserAction,
		Timestamp:  timestamp,
		Address:    address,
		ActionType: actionType,
		PoolID:     poolID,
		AmountUsd:  amountUsd,
	}
}

func NewLeaderboardUpdateMessage(updateType string, data json.RawMessage, timestamp int64) Message {
	return Message{
		Type:       MessageLeaderboardUpdate,
		Timestamp:  timestamp,
		UpdateType: updateType,
		Data:       data,
	}
}
