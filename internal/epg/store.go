package epg

import "sort"

// ProgramStore holds each channel's per-day programme buckets.
//
// A bucket, once resolved, is final: storing a date key a second time is a
// no-op, even when the first resolution was empty. The store never performs
// I/O; population is driven by the channel source.
type ProgramStore struct {
	buckets map[string]map[string][]*Programme
}

func NewProgramStore() *ProgramStore {
	return &ProgramStore{buckets: make(map[string]map[string][]*Programme)}
}

// Resolved reports whether the (channel, date) bucket has been populated,
// including population to an empty result.
func (s *ProgramStore) Resolved(channelID, date string) bool {
	_, ok := s.buckets[channelID][date]
	return ok
}

// Put resolves a bucket, sorting the programmes ascending by start time.
// Re-resolving an existing bucket is ignored.
func (s *ProgramStore) Put(channelID, date string, progs []*Programme) {
	days, ok := s.buckets[channelID]
	if !ok {
		days = make(map[string][]*Programme)
		s.buckets[channelID] = days
	}
	if _, ok := days[date]; ok {
		return
	}
	sort.SliceStable(progs, func(i, j int) bool {
		return progs[i].Start.Before(progs[j].Start)
	})
	days[date] = progs
}

// Bucket returns the resolved programmes for one day, or nil.
func (s *ProgramStore) Bucket(channelID, date string) []*Programme {
	return s.buckets[channelID][date]
}

// Listing returns the channel's programmes intersecting the window, merged
// across the window's boundary dates, in start order. Buckets are stored
// sorted, so the merge only needs a single stable sort when the window
// spans midnight.
func (s *ProgramStore) Listing(channelID string, w Window) []*Programme {
	var out []*Programme
	dates := w.Dates()
	for _, date := range dates {
		for _, p := range s.buckets[channelID][date] {
			if w.Overlaps(p) {
				out = append(out, p)
			}
		}
	}
	if len(dates) > 1 {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Start.Before(out[j].Start)
		})
	}
	return out
}

// Listings returns the window listing for every channel, keyed by channel
// ID, plus the total programme count across all of them.
func (s *ProgramStore) Listings(channels []*Channel, w Window) (map[string][]*Programme, int) {
	out := make(map[string][]*Programme, len(channels))
	total := 0
	for _, c := range channels {
		l := s.Listing(c.ID, w)
		out[c.ID] = l
		total += len(l)
	}
	return out, total
}

// FullListing returns every resolved programme for the channel across all
// days, in start order. Day jumps resolve against this unwindowed view.
func (s *ProgramStore) FullListing(channelID string) []*Programme {
	var out []*Programme
	for _, progs := range s.buckets[channelID] {
		out = append(out, progs...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
