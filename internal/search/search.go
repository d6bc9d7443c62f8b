// Package search matches user queries against the channel list for the
// channel picker.
package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/bell345/zapper/internal/epg"
)

// Channels returns the channels matching query, best matches first.
//
// Exact ID matches rank above substring matches, which rank above fuzzy
// matches on "id display-name". An empty query matches nothing.
func Channels(query string, channels []*epg.Channel) []*epg.Channel {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	lower := strings.ToLower(query)

	var exact, substr []*epg.Channel
	seen := make(map[string]bool, len(channels))
	for _, c := range channels {
		switch {
		case strings.EqualFold(c.ID, query):
			exact = append(exact, c)
			seen[c.ID] = true
		case c.Matches(lower):
			substr = append(substr, c)
			seen[c.ID] = true
		}
	}

	haystack := make([]string, len(channels))
	for i, c := range channels {
		haystack[i] = c.ID + " " + c.DisplayName
	}
	ranks := fuzzy.RankFindNormalizedFold(query, haystack)
	sort.Sort(ranks)

	out := append(exact, substr...)
	for _, r := range ranks {
		c := channels[r.OriginalIndex]
		if !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c)
		}
	}
	return out
}
