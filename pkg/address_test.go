package pkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEthAddress(t *testing.T) {
	t.Run("checksummed address is lowercased", func(t *testing.T) {
		addr, err := NormalizeEthAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")
		require.NoError(t, err)
		assert.Equal(t, "0xab5801a7d398351b8be11c439e05c5b3259aec9b", addr)
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		addr, err := NormalizeEthAddress("  0xab5801a7d398351b8be11c439e05c5b3259aec9b\n")
		require.NoError(t, err)
		assert.Equal(t, "0xab5801a7d398351b8be11c439e05c5b3259aec9b", addr)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		cases := []string{
			"",
			"0x123",
			strings.Repeat("a", 42),
			"0xzz5801a7d398351b8be11c439e05c5b3259aec9b",
		}
		for _, input := range cases {
			_, err := NormalizeEthAddress(input)
			assert.Error(t, err, "input %q", input)
		}
	})
}
