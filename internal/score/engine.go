package score

import (
	"fmt"
	"math"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/types"
)

// Component weights. They must sum to 1.
const (
	earlyAdopterWeight = 0.20
	volumeWeight       = 0.25
	lpEfficiencyWeight = 0.25
	diversityWeight    = 0.15
	consistencyWeight  = 0.15
)

// Normalization caps. Values at or beyond the cap score the full 100 for
// that component; volume and fees use log scaling so large accounts do not
// dominate the leaderboard linearly.
const (
	earlyAdopterHorizonDays = 365
	volumeSaturationUsd     = 10_000_000
	feesSaturationUsd       = 100_000
	diversitySaturation     = 20
)

// ActivityAggregates are the per-user counters the score is derived from.
// Callers are expected to pass sanitized values; negative or non-finite
// inputs are rejected, never coerced.
type ActivityAggregates struct {
	VolumeUsd      float64
	FeesEarnedUsd  float64
	PositionCount  int64
	ActiveDays     int64
	DaysSinceFirst int64
}

func (a ActivityAggregates) validate() *types.Error {
	if math.IsNaN(a.VolumeUsd) || math.IsInf(a.VolumeUsd, 0) {
		return types.NewValidationFailedError(fmt.Errorf("volume is not finite"))
	}
	if math.IsNaN(a.FeesEarnedUsd) || math.IsInf(a.FeesEarnedUsd, 0) {
		return types.NewValidationFailedError(fmt.Errorf("fees earned is not finite"))
	}
	if a.VolumeUsd < 0 {
		return types.NewValidationFailedError(fmt.Errorf("volume must not be negative, got %f", a.VolumeUsd))
	}
	if a.FeesEarnedUsd < 0 {
		return types.NewValidationFailedError(fmt.Errorf("fees earned must not be negative, got %f", a.FeesEarnedUsd))
	}
	if a.PositionCount < 0 {
		return types.NewValidationFailedError(fmt.Errorf("position count must not be negative, got %d", a.PositionCount))
	}
	if a.ActiveDays < 0 {
		return types.NewValidationFailedError(fmt.Errorf("active days must not be negative, got %d", a.ActiveDays))
	}
	if a.DaysSinceFirst < 0 {
		return types.NewValidationFailedError(fmt.Errorf("days since first activity must not be negative, got %d", a.DaysSinceFirst))
	}
	return nil
}

// Breakdown holds each normalized component in [0,100] before weighting.
type Breakdown struct {
	EarlyAdopter float64 `json:"earlyAdopter"`
	Volume       float64 `json:"volume"`
	LPEfficiency float64 `json:"lpEfficiency"`
	Diversity    float64 `json:"diversity"`
	Consistency  float64 `json:"consistency"`
}

// ComputeScore derives the composite DNA score and tier from activity
// aggregates. It is deterministic and performs no I/O.
func ComputeScore(agg ActivityAggregates) (int, types.Tier, *types.Error) {
	breakdown, err := ComputeBreakdown(agg)
	if err != nil {
		return 0, "", err
	}

	weighted := breakdown.EarlyAdopter*earlyAdopterWeight +
		breakdown.Volume*volumeWeight +
		breakdown.LPEfficiency*lpEfficiencyWeight +
		breakdown.Diversity*diversityWeight +
		breakdown.Consistency*consistencyWeight

	score := int(math.Round(weighted))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, types.TierForScore(score), nil
}

// ComputeBreakdown returns the individual normalized components. A zero
// aggregate contributes a zero component, never a hole in the sum.
func ComputeBreakdown(agg ActivityAggregates) (*Breakdown, *types.Error) {
	if err := agg.validate(); err != nil {
		return nil, err
	}

	return &Breakdown{
		EarlyAdopter: cappedLinear(float64(agg.DaysSinceFirst), earlyAdopterHorizonDays),
		Volume:       logNormalized(agg.VolumeUsd, volumeSaturationUsd),
		LPEfficiency: logNormalized(agg.FeesEarnedUsd, feesSaturationUsd),
		Diversity:    cappedLinear(float64(agg.PositionCount), diversitySaturation),
		Consistency:  consistency(agg.ActiveDays, agg.DaysSinceFirst),
	}, nil
}

// logNormalized maps value onto [0,100] with log10 scaling saturating at sat.
func logNormalized(value, sat float64) float64 {
	if value <= 0 {
		return 0
	}
	normalized := math.Log10(value+1) / math.Log10(sat+1) * 100
	return math.Min(normalized, 100)
}

// cappedLinear maps value onto [0,100] linearly, saturating at sat.
func cappedLinear(value, sat float64) float64 {
	if value <= 0 {
		return 0
	}
	return math.Min(value/sat*100, 100)
}

// consistency is the ratio of active days to days since first activity,
// capped at 1. A user seen for the first time today counts as fully
// consistent if they were active today.
func consistency(activeDays, daysSinceFirst int64) float64 {
	if activeDays <= 0 {
		return 0
	}
	span := daysSinceFirst
	if span < 1 {
		span = 1
	}
	return math.Min(float64(activeDays)/float64(span), 1) * 100
}
