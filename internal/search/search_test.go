package search

import (
	"testing"

	"github.com/bell345/zapper/internal/epg"
)

var testChannels = []*epg.Channel{
	{ID: "abc1", DisplayName: "ABC1"},
	{ID: "abc2", DisplayName: "ABC2"},
	{ID: "sbs1", DisplayName: "SBS ONE"},
	{ID: "sbs2", DisplayName: "SBS TWO"},
	{ID: "tele1", DisplayName: "Teletext"},
}

func ids(channels []*epg.Channel) []string {
	out := make([]string, len(channels))
	for i, c := range channels {
		out[i] = c.ID
	}
	return out
}

func TestChannelsExactIDFirst(t *testing.T) {
	got := Channels("abc1", testChannels)
	if len(got) == 0 || got[0].ID != "abc1" {
		t.Fatalf("Channels(abc1) = %v, want abc1 first", ids(got))
	}
}

func TestChannelsSubstring(t *testing.T) {
	got := Channels("sbs", testChannels)
	if len(got) < 2 {
		t.Fatalf("Channels(sbs) = %v, want both SBS channels", ids(got))
	}
	if got[0].ID != "sbs1" || got[1].ID != "sbs2" {
		t.Fatalf("Channels(sbs) = %v, want sbs1 sbs2 first", ids(got))
	}
}

func TestChannelsMatchesDisplayName(t *testing.T) {
	got := Channels("teletext", testChannels)
	if len(got) == 0 || got[0].ID != "tele1" {
		t.Fatalf("Channels(teletext) = %v, want tele1", ids(got))
	}
}

func TestChannelsEmptyQuery(t *testing.T) {
	if got := Channels("   ", testChannels); got != nil {
		t.Fatalf("Channels(blank) = %v, want nil", ids(got))
	}
}

func TestChannelsNoDuplicates(t *testing.T) {
	got := Channels("abc", testChannels)
	seen := make(map[string]bool)
	for _, c := range got {
		if seen[c.ID] {
			t.Fatalf("Channels(abc) returned %s twice: %v", c.ID, ids(got))
		}
		seen[c.ID] = true
	}
}
