package types

type ActivityType string

func (a ActivityType) String() string {
	return string(a)
}

const (
	ActivitySwap          ActivityType = "swap"
	ActivityPositionOpen  ActivityType = "position_open"
	ActivityPositionClose ActivityType = "position_close"
	ActivityFeeCollection ActivityType = "fee_collection"
)

// ActivityEvent is one decoded on-chain action attributed to a single
// address, as delivered by the activity queue. Decoding happens upstream;
// this service only consumes the normalized form.
type ActivityEvent struct {
	Address      string       `json:"address"`
	ActivityType ActivityType `json:"activityType"`
	PoolID       string       `json:"poolId,omitempty"`
	AmountUsd    float64      `json:"amountUsd,omitempty"`
	FeesUsd      float64      `json:"feesUsd,omitempty"`
	Timestamp    int64        `json:"timestamp"`
}

// ActivityDelta is the aggregate patch an event contributes to the
// affected user's persisted stats.
type ActivityDelta struct {
	VolumeUsd     float64
	FeesUsd       float64
	PositionCount int64
	ActivityTs    int64
}
