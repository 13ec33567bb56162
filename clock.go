package main

import "time"

// Clock produces the fractional-second timestamps chunks and sessions are
// stamped with. It is a zero-size struct; callers use Clock{}.Now() or hold
// one as a field (PtyDriver).
type Clock struct{}

// Now returns the current wall-clock time as fractional seconds since the
// Unix epoch. UnixNano drops time.Time's monotonic reading, so a wall-clock
// step between two calls shows up in their difference.
func (Clock) Now() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
