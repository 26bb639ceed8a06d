package model

const OverallStatsCollection = "overall_stats"

// OverallStatsDocument represents the overall leaderboard statistics
type OverallStatsDocument struct {
	ID             string  `bson:"_id"`              // Always "overall_stats"
	TrackedUsers   int64   `bson:"tracked_users"`    // Total scored user count
	TotalVolumeUsd float64 `bson:"total_volume_usd"` // Cumulative tracked volume in USD
	LastUpdated    int64   `bson:"last_updated"`     // Unix timestamp of last update
}
