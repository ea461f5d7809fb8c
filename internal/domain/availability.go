package domain

import "time"

// RoomAvailability is the per (room type, calendar day) inventory counter.
// Date carries no time component.
type RoomAvailability struct {
	ID             int64
	RoomTypeID     int64
	Date           time.Time
	AvailableRooms int
}

// NightsOf expands a half-open [start, end) stay into its per-night dates.
func NightsOf(start, end time.Time) []time.Time {
	var dates []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
