package epg

import "strings"

// Channel is the immutable identity record for a broadcast channel, taken
// from the channel index document.
type Channel struct {
	ID          string
	DisplayName string

	// BaseURL is the root under which the channel's daily listing files live.
	BaseURL string

	// ValidDates, when non-empty, is the set of ISO dates the source claims
	// to have data for. Fetches outside the set are skipped without a
	// network call.
	ValidDates map[string]bool
}

// HasDate reports whether date (ISO form) passes the channel's valid-dates
// gate. A channel without a declared date set accepts every date.
func (c *Channel) HasDate(date string) bool {
	if len(c.ValidDates) == 0 {
		return true
	}
	return c.ValidDates[date]
}

// Matches reports whether query is a case-insensitive substring of the
// channel's ID or display name.
func (c *Channel) Matches(query string) bool {
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.ID), query) ||
		strings.Contains(strings.ToLower(c.DisplayName), query)
}

func (c *Channel) String() string {
	return c.ID + ": " + c.DisplayName
}

// IndexOf returns the position of id in channels, or -1.
func IndexOf(channels []*Channel, id string) int {
	for i, c := range channels {
		if c.ID == id {
			return i
		}
	}
	return -1
}
