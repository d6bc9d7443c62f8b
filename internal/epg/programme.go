package epg

import (
	"fmt"
	"time"
)

// Programme is a single broadcast slot parsed from a listing document.
//
// Programmes are always handled by pointer: two values refer to the same
// broadcast iff they are the same pointer. Field comparison is not a valid
// identity test because titles recur across a schedule.
type Programme struct {
	Title       string
	SubTitle    string
	Description string
	Actors      []string
	Director    string
	AirDate     time.Time // original production date, zero when absent
	Categories  []string
	Rating      string

	Start time.Time
	Stop  time.Time

	// ChannelID is a lookup key into the caller's channel list, never an
	// owning reference.
	ChannelID string
}

// String renders the short one-line form used in channel listings.
func (p *Programme) String() string {
	return fmt.Sprintf("%s [%s - %s]", p.Title, p.Start.Format("15:04"), p.Stop.Format("15:04"))
}

// Airing reports whether t falls inside the programme's broadcast slot.
func (p *Programme) Airing(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.Stop)
}
