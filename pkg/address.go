package pkg

import (
	"fmt"
	"strings"
)

const ethAddressLength = 42 // "0x" + 40 hex chars

// NormalizeEthAddress lowercases a hex address so that lexicographic
// comparisons are deterministic, and validates its shape. Checksum casing is
// intentionally discarded; the leaderboard keys users by the lowercase form.
func NormalizeEthAddress(address string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(address))
	if len(normalized) != ethAddressLength {
		return "", fmt.Errorf("invalid address length %d, expected %d", len(normalized), ethAddressLength)
	}
	if !strings.HasPrefix(normalized, "0x") {
		return "", fmt.Errorf("address must start with 0x")
	}
	for _, c := range normalized[2:] {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("address contains non-hex character %q", c)
		}
	}

	return normalized, nil
}
