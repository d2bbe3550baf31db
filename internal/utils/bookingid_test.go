package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingIDFormat(t *testing.T) {
	id, err := NewBookingID()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "BK"), id)
	// "BK" + 13-digit millis + 6 char suffix
	assert.GreaterOrEqual(t, len(id), 2+13+6)

	suffix := id[len(id)-6:]
	for _, r := range suffix {
		assert.Contains(t, bookingIDAlphabet, string(r))
	}
}

func TestNewBookingIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		id, err := NewBookingID()
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
