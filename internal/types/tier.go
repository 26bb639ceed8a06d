package types

// Enum values for user tiers, derived from the DNA score
type Tier string

const (
	TierNovice       Tier = "NOVICE"
	TierBeginner     Tier = "BEGINNER"
	TierIntermediate Tier = "INTERMEDIATE"
	TierExpert       Tier = "EXPERT"
	TierWhale        Tier = "WHALE"
)

func (t Tier) String() string {
	return string(t)
}

// tierThresholds maps each tier to its inclusive lower score bound,
// in ascending order. The boundaries are non-overlapping and cover [0,100].
var tierThresholds = []struct {
	minScore int
	tier     Tier
}{
	{0, TierNovice},
	{20, TierBeginner},
	{40, TierIntermediate},
	{60, TierExpert},
	{80, TierWhale},
}

// TierForScore returns the tier for a given DNA score. A score sitting
// exactly on a boundary belongs to the higher tier.
func TierForScore(score int) Tier {
	tier := TierNovice
	for _, threshold := range tierThresholds {
		if score >= threshold.minScore {
			tier = threshold.tier
		}
	}
	return tier
}
