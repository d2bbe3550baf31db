package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHourLabels(t *testing.T) {
	labels := HourLabels()
	require.Len(t, labels, 13)
	assert.Equal(t, "10:00", labels[0])
	assert.Equal(t, "22:00", labels[len(labels)-1])
	assert.Equal(t, TotalSlots, len(labels))
}

func TestParseHour(t *testing.T) {
	h, err := ParseHour("14:00")
	require.NoError(t, err)
	assert.Equal(t, 14, h)

	h, err = ParseHour("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, h)

	_, err = ParseHour("abc")
	assert.Error(t, err)

	_, err = ParseHour("")
	assert.Error(t, err)
}

func TestSpanLabels(t *testing.T) {
	assert.Equal(t, []string{"13:00", "14:00"}, SpanLabels(13, 2))
	assert.Equal(t, []string{"10:00", "11:00", "12:00"}, SpanLabels(10, 3))
	// duration below one is treated as a single hour
	assert.Equal(t, []string{"15:00"}, SpanLabels(15, 0))
}

func TestFitsOperatingHours(t *testing.T) {
	assert.True(t, FitsOperatingHours(21, 2))  // ends at 22:00, the last slot
	assert.True(t, FitsOperatingHours(22, 1))  // single last slot
	assert.False(t, FitsOperatingHours(22, 2)) // would spill past closing
	assert.False(t, FitsOperatingHours(21, 3))
}

func TestInOperatingHours(t *testing.T) {
	assert.False(t, InOperatingHours(9))
	assert.True(t, InOperatingHours(10))
	assert.True(t, InOperatingHours(22))
	assert.False(t, InOperatingHours(23))
}
