package tool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNo(t *testing.T) {
	no := GenerateOrderNo()
	require.Len(t, no, 2+14+12)
	assert.True(t, strings.HasPrefix(no, "MO"))
	for _, r := range no[2:16] {
		assert.True(t, r >= '0' && r <= '9', "timestamp segment must be digits")
	}

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := GenerateOrderNo()
		assert.False(t, seen[n], "order numbers must not repeat")
		seen[n] = true
	}
}

func TestGenerateUUIDV7(t *testing.T) {
	a, b := GenerateUUIDV7(), GenerateUUIDV7()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	// v7 is time-ordered, so successive ids sort ascending.
	assert.Less(t, a, b)
}
