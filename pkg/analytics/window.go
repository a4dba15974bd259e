package analytics

import "time"

// Window is an observation window for an analysis run. Components derive a
// zero window from their event or transaction span.
type Window struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the window was left unset
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Hours returns the window duration in hours
func (w Window) Hours() float64 {
	return w.End.Sub(w.Start).Hours()
}

// Days returns the window duration in whole days, at least 1 for any
// non-empty window.
func (w Window) Days() int {
	days := int(w.End.Sub(w.Start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// Contains reports whether t falls inside the window (inclusive)
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
