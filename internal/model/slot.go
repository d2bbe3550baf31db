// Package model holds the domain types of the banquet booking service.
// Everything here is pure: no I/O, no clocks, no database handles.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Operating hours of the venue. Slots are one hour long and are identified
// by their start hour; the last bookable slot of the day starts at CloseHour.
const (
	OpenHour  = 10
	CloseHour = 22

	// DefaultDuration is applied when a request omits the duration.
	DefaultDuration = 2
)

// TotalSlots is the number of bookable hours in one day.
const TotalSlots = CloseHour - OpenHour + 1

// HourLabel formats a slot start hour as the wire label used throughout the
// API, e.g. 9 -> "09:00".
func HourLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// HourLabels returns the full ordered grid of slot labels for one day.
func HourLabels() []string {
	labels := make([]string, 0, TotalSlots)
	for h := OpenHour; h <= CloseHour; h++ {
		labels = append(labels, HourLabel(h))
	}
	return labels
}

// ParseHour extracts the hour from an "HH:MM" label. Minutes are ignored;
// bookings are aligned to whole hours.
func ParseHour(label string) (int, error) {
	parts := strings.SplitN(label, ":", 2)
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", label)
	}
	return hour, nil
}

// InOperatingHours reports whether a slot starting at the given hour exists
// on the grid.
func InOperatingHours(hour int) bool {
	return hour >= OpenHour && hour <= CloseHour
}

// FitsOperatingHours reports whether a booking starting at start with the
// given duration ends on or before the last slot of the day.
func FitsOperatingHours(start, duration int) bool {
	return start+duration-1 <= CloseHour
}

// SpanHours returns the hours a booking occupies: start, start+1, ...,
// start+duration-1. The conflict check and the reservation insert both go
// through this function so they can never disagree about which slots a
// request covers.
func SpanHours(start, duration int) []int {
	if duration < 1 {
		duration = 1
	}
	hours := make([]int, 0, duration)
	for i := 0; i < duration; i++ {
		hours = append(hours, start+i)
	}
	return hours
}

// SpanLabels is SpanHours rendered as wire labels.
func SpanLabels(start, duration int) []string {
	hours := SpanHours(start, duration)
	labels := make([]string, 0, len(hours))
	for _, h := range hours {
		labels = append(labels, HourLabel(h))
	}
	return labels
}
