package epg

import "testing"

func prog(t *testing.T, channelID, title, start, stop string) *Programme {
	t.Helper()
	return &Programme{
		ChannelID: channelID,
		Title:     title,
		Start:     mustTime(t, start),
		Stop:      mustTime(t, stop),
	}
}

func TestStorePutSortsByStart(t *testing.T) {
	s := NewProgramStore()
	s.Put("abc1", "2024-01-01", []*Programme{
		prog(t, "abc1", "late", "2024-01-01 20:00", "2024-01-01 21:00"),
		prog(t, "abc1", "early", "2024-01-01 06:00", "2024-01-01 07:00"),
		prog(t, "abc1", "mid", "2024-01-01 12:00", "2024-01-01 13:00"),
	})
	got := s.Bucket("abc1", "2024-01-01")
	want := []string{"early", "mid", "late"}
	if len(got) != len(want) {
		t.Fatalf("bucket has %d programmes, want %d", len(got), len(want))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("bucket[%d].Title = %q, want %q", i, got[i].Title, title)
		}
	}
}

func TestStoreBucketIsFinal(t *testing.T) {
	s := NewProgramStore()
	s.Put("abc1", "2024-01-01", nil)
	if !s.Resolved("abc1", "2024-01-01") {
		t.Fatal("empty bucket not resolved")
	}
	s.Put("abc1", "2024-01-01", []*Programme{
		prog(t, "abc1", "late arrival", "2024-01-01 06:00", "2024-01-01 07:00"),
	})
	if got := s.Bucket("abc1", "2024-01-01"); len(got) != 0 {
		t.Fatalf("re-put replaced a resolved bucket: %d programmes", len(got))
	}
}

func TestStoreResolvedUnknown(t *testing.T) {
	s := NewProgramStore()
	if s.Resolved("abc1", "2024-01-01") {
		t.Fatal("unpopulated bucket reported resolved")
	}
}

func TestStoreListingWindowed(t *testing.T) {
	s := NewProgramStore()
	s.Put("abc1", "2024-01-01", []*Programme{
		prog(t, "abc1", "before", "2024-01-01 07:00", "2024-01-01 08:00"),
		prog(t, "abc1", "running", "2024-01-01 08:30", "2024-01-01 09:30"),
		prog(t, "abc1", "inside", "2024-01-01 09:30", "2024-01-01 10:30"),
		prog(t, "abc1", "after", "2024-01-01 11:00", "2024-01-01 12:00"),
	})
	w := Window{Start: mustTime(t, "2024-01-01 09:00"), End: mustTime(t, "2024-01-01 11:00")}
	got := s.Listing("abc1", w)
	want := []string{"running", "inside"}
	if len(got) != len(want) {
		t.Fatalf("listing has %d programmes, want %d", len(got), len(want))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("listing[%d].Title = %q, want %q", i, got[i].Title, title)
		}
	}
}

func TestStoreListingAcrossMidnight(t *testing.T) {
	s := NewProgramStore()
	s.Put("abc1", "2024-01-01", []*Programme{
		prog(t, "abc1", "night", "2024-01-01 23:00", "2024-01-02 00:30"),
	})
	s.Put("abc1", "2024-01-02", []*Programme{
		prog(t, "abc1", "dawn", "2024-01-02 00:30", "2024-01-02 02:00"),
	})
	w := Window{Start: mustTime(t, "2024-01-01 23:30"), End: mustTime(t, "2024-01-02 01:30")}
	got := s.Listing("abc1", w)
	if len(got) != 2 || got[0].Title != "night" || got[1].Title != "dawn" {
		t.Fatalf("cross-midnight listing = %v", titles(got))
	}
}

func TestStoreListingsTotal(t *testing.T) {
	s := NewProgramStore()
	s.Put("abc1", "2024-01-01", []*Programme{
		prog(t, "abc1", "a", "2024-01-01 09:00", "2024-01-01 10:00"),
	})
	s.Put("sbs1", "2024-01-01", nil)
	channels := []*Channel{{ID: "abc1"}, {ID: "sbs1"}}
	w := Window{Start: mustTime(t, "2024-01-01 09:00"), End: mustTime(t, "2024-01-01 11:00")}
	listings, total := s.Listings(channels, w)
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
	if len(listings["abc1"]) != 1 || len(listings["sbs1"]) != 0 {
		t.Fatalf("listings = %v", listings)
	}
}

func TestStoreFullListingOrdered(t *testing.T) {
	s := NewProgramStore()
	s.Put("abc1", "2024-01-02", []*Programme{
		prog(t, "abc1", "tomorrow", "2024-01-02 09:00", "2024-01-02 10:00"),
	})
	s.Put("abc1", "2024-01-01", []*Programme{
		prog(t, "abc1", "today", "2024-01-01 09:00", "2024-01-01 10:00"),
	})
	got := s.FullListing("abc1")
	if len(got) != 2 || got[0].Title != "today" || got[1].Title != "tomorrow" {
		t.Fatalf("full listing = %v", titles(got))
	}
}

func titles(progs []*Programme) []string {
	out := make([]string, len(progs))
	for i, p := range progs {
		out[i] = p.Title
	}
	return out
}

func TestProgrammeAiring(t *testing.T) {
	p := prog(t, "abc1", "show", "2024-01-01 09:00", "2024-01-01 10:00")
	cases := []struct {
		at   string
		want bool
	}{
		{"2024-01-01 08:59", false},
		{"2024-01-01 09:00", true},
		{"2024-01-01 09:59", true},
		{"2024-01-01 10:00", false},
	}
	for _, tc := range cases {
		if got := p.Airing(mustTime(t, tc.at)); got != tc.want {
			t.Errorf("Airing(%s) = %v, want %v", tc.at, got, tc.want)
		}
	}
}
