package epg

import "time"

// DefaultQuantum is the grid's default alignment interval. Windows are
// realigned to a quantum boundary before rendering, and time travel shifts
// the window by one quantum at a time.
const DefaultQuantum = 30 * time.Minute

// ISODate is the date layout used for bucket keys and listing file names.
const ISODate = "2006-01-02"

// Window is the half-open time interval [Start, End) currently displayed
// and navigated.
type Window struct {
	Start time.Time
	End   time.Time
}

// Align floors t to the previous quantum boundary.
func Align(t time.Time, quantum time.Duration) time.Time {
	if quantum <= 0 {
		quantum = DefaultQuantum
	}
	secs := t.Unix()
	q := int64(quantum / time.Second)
	return time.Unix(secs/q*q, 0).In(t.Location())
}

// NewWindow builds a window of the given length starting at start, aligned
// to the quantum.
func NewWindow(start time.Time, length, quantum time.Duration) Window {
	s := Align(start, quantum)
	return Window{Start: s, End: s.Add(length)}
}

// Aligned returns the window with both endpoints floored to the quantum.
func (w Window) Aligned(quantum time.Duration) Window {
	return Window{Start: Align(w.Start, quantum), End: Align(w.End, quantum)}
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Shift moves the whole window by d, preserving its length.
func (w Window) Shift(d time.Duration) Window {
	return Window{Start: w.Start.Add(d), End: w.End.Add(d)}
}

// Contains reports whether t falls inside the half-open interval.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Overlaps reports whether the programme's slot intersects the window at
// all. This is the listing membership test; placement on the grid uses the
// stricter Contains(p.Start).
func (w Window) Overlaps(p *Programme) bool {
	return p.Stop.After(w.Start) && p.Start.Before(w.End)
}

// Clamp bounds t into [Start, End].
func (w Window) Clamp(t time.Time) time.Time {
	if t.Before(w.Start) {
		return w.Start
	}
	if t.After(w.End) {
		return w.End
	}
	return t
}

// Dates returns the ISO dates the window touches: the start date, plus the
// end date when the window crosses midnight.
func (w Window) Dates() []string {
	s := w.Start.Format(ISODate)
	e := w.End.Format(ISODate)
	if s == e {
		return []string{s}
	}
	return []string{s, e}
}
