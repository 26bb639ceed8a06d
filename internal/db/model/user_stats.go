package model

import (
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/types"
)

const UserStatsCollection = "user_stats"

// UserStatsDocument holds the per-user activity aggregates together with
// the derived DNA score and tier. The address is the unique key. Only the
// update coordinator mutates this document.
type UserStatsDocument struct {
	Address         string  `bson:"_id"`
	TotalVolumeUsd  float64 `bson:"total_volume_usd"`
	TotalFeesUsd    float64 `bson:"total_fees_usd"`
	PositionCount   int64   `bson:"position_count"`
	ActiveDayCount  int64   `bson:"active_day_count"`
	LastActiveDay   int64   `bson:"last_active_day"`   // days since epoch of the last counted activity
	FirstActivityTs int64   `bson:"first_activity_ts"` // epoch ms
	LastActivityTs  int64   `bson:"last_activity_ts"`  // epoch ms
	EnsName         string  `bson:"ens_name,omitempty"`
	DnaScore        int     `bson:"dna_score"`
	Tier            string  `bson:"tier"`
	LastUpdated     int64   `bson:"last_updated"` // Unix timestamp of last update
}

// UserScore is the projection used to bootstrap the rank index.
type UserScore struct {
	Address  string `bson:"_id"`
	DnaScore int    `bson:"dna_score"`
	Tier     string `bson:"tier"`
}

func NewUserStatsDocument(address string) *UserStatsDocument {
	return &UserStatsDocument{
		Address: address,
		Tier:    types.TierNovice.String(),
	}
}
