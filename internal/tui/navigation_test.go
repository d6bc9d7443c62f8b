package tui

import (
	"context"
	"testing"
	"time"

	"github.com/bell345/zapper/internal/epg"
	"github.com/bell345/zapper/internal/log"
)

// scriptedSource resolves buckets from a canned map instead of the network.
type scriptedSource struct {
	store   *epg.ProgramStore
	data    map[string]map[string][]*epg.Programme
	ensures int
}

func (s *scriptedSource) Ensure(_ context.Context, ch *epg.Channel, date string) error {
	if s.store.Resolved(ch.ID, date) {
		return nil
	}
	s.ensures++
	s.store.Put(ch.ID, date, s.data[ch.ID][date])
	return nil
}

func (s *scriptedSource) EnsureWindow(ctx context.Context, channels []*epg.Channel, w epg.Window) error {
	for _, ch := range channels {
		for _, date := range w.Dates() {
			if err := s.Ensure(ctx, ch, date); err != nil {
				return err
			}
		}
	}
	return nil
}

type navFixture struct {
	nav     *Navigator
	src     *scriptedSource
	clock   *fakeClock
	a, b, c *epg.Programme
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", s, time.UTC)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

func navProg(t *testing.T, channelID, title, start, stop string) *epg.Programme {
	t.Helper()
	return &epg.Programme{
		ChannelID: channelID,
		Title:     title,
		Start:     at(t, start),
		Stop:      at(t, stop),
	}
}

// newNavFixture builds two channels over a [09:00, 11:00) window with a
// 30 minute quantum and a 200ms travel cooldown.
func newNavFixture(t *testing.T) *navFixture {
	t.Helper()
	a := navProg(t, "abc1", "A", "2024-01-01 09:00", "2024-01-01 10:00")
	b := navProg(t, "abc1", "B", "2024-01-01 10:00", "2024-01-01 10:30")
	c := navProg(t, "abc1", "C", "2024-01-01 10:30", "2024-01-01 11:30")
	d := navProg(t, "sbs1", "D", "2024-01-01 09:30", "2024-01-01 10:30")

	channels := []*epg.Channel{
		{ID: "abc1", DisplayName: "ABC1"},
		{ID: "sbs1", DisplayName: "SBS ONE"},
	}
	store := epg.NewProgramStore()
	src := &scriptedSource{
		store: store,
		data: map[string]map[string][]*epg.Programme{
			"abc1": {"2024-01-01": {a, b, c}},
			"sbs1": {"2024-01-01": {d}},
		},
	}

	clock := &fakeClock{t: at(t, "2024-01-01 09:15")}
	nav := NewNavigator(channels, store, src, 30*time.Minute, 200*time.Millisecond, log.NullLogger()).
		WithClock(clock.now)

	w := epg.NewWindow(at(t, "2024-01-01 09:00"), 2*time.Hour, 30*time.Minute)
	if err := nav.Init(context.Background(), w); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return &navFixture{nav: nav, src: src, clock: clock, a: a, b: b, c: c}
}

func apply(t *testing.T, nav *Navigator, syms ...Symbol) {
	t.Helper()
	for _, sym := range syms {
		if err := nav.Apply(context.Background(), sym); err != nil {
			t.Fatalf("Apply(%v): %v", sym, err)
		}
	}
}

func TestInitHighlightsFirstProgramme(t *testing.T) {
	f := newNavFixture(t)
	if f.nav.Highlighted() != f.a {
		t.Fatalf("initial highlight = %v, want A", f.nav.Highlighted())
	}
	if !f.nav.Anchor().Equal(f.a.Start) {
		t.Fatalf("initial anchor = %s", f.nav.Anchor())
	}
}

func TestInitEmptyWindow(t *testing.T) {
	store := epg.NewProgramStore()
	src := &scriptedSource{store: store, data: map[string]map[string][]*epg.Programme{}}
	nav := NewNavigator([]*epg.Channel{{ID: "abc1"}}, store, src, 30*time.Minute, 0, log.NullLogger())

	w := epg.NewWindow(at(t, "2024-01-01 09:00"), 2*time.Hour, 30*time.Minute)
	if err := nav.Init(context.Background(), w); err != epg.ErrEmptyWindow {
		t.Fatalf("Init = %v, want ErrEmptyWindow", err)
	}
}

func TestRightMovesWithinListing(t *testing.T) {
	f := newNavFixture(t)
	apply(t, f.nav, SymRight)
	if f.nav.Highlighted() != f.b {
		t.Fatalf("after RIGHT highlight = %q, want B", f.nav.Highlighted().Title)
	}
	apply(t, f.nav, SymRight)
	if f.nav.Highlighted() != f.c {
		t.Fatalf("after RIGHT RIGHT highlight = %q, want C", f.nav.Highlighted().Title)
	}
	// C starts at 10:30; the anchor follows the highlight.
	if !f.nav.Anchor().Equal(f.c.Start) {
		t.Fatalf("anchor = %s, want C start", f.nav.Anchor())
	}
}

func TestRightAtEdgeTravelsOneQuantum(t *testing.T) {
	f := newNavFixture(t)
	apply(t, f.nav, SymRight, SymRight)

	// Highlight sits on the last programme in the window; the next RIGHT
	// travels the window one quantum instead of moving the cursor.
	apply(t, f.nav, SymRight)
	if got := f.nav.Window().Start; !got.Equal(at(t, "2024-01-01 09:30")) {
		t.Fatalf("window start = %s, want 09:30", got)
	}
	if got := f.nav.Window().End; !got.Equal(at(t, "2024-01-01 11:30")) {
		t.Fatalf("window end = %s, want 11:30", got)
	}
	// C airs at the anchor, so it stays highlighted across the shift.
	if f.nav.Highlighted() != f.c {
		t.Fatalf("highlight after travel = %q, want C", f.nav.Highlighted().Title)
	}
}

func TestTravelDebounced(t *testing.T) {
	f := newNavFixture(t)
	apply(t, f.nav, SymRight, SymRight, SymRight)
	start := f.nav.Window().Start

	// Within the cooldown the edge press is swallowed.
	apply(t, f.nav, SymRight)
	if got := f.nav.Window().Start; !got.Equal(start) {
		t.Fatalf("debounced press moved window to %s", got)
	}

	f.clock.advance(250 * time.Millisecond)
	apply(t, f.nav, SymRight)
	if got := f.nav.Window().Start; !got.Equal(start.Add(30 * time.Minute)) {
		t.Fatalf("window start after cooldown = %s, want %s", got, start.Add(30*time.Minute))
	}
}

func TestLeftAtStartTravelsBack(t *testing.T) {
	f := newNavFixture(t)
	apply(t, f.nav, SymLeft)
	if got := f.nav.Window().Start; !got.Equal(at(t, "2024-01-01 08:30")) {
		t.Fatalf("window start = %s, want 08:30", got)
	}
	// A runs across the anchor, so it remains highlighted.
	if f.nav.Highlighted() != f.a {
		t.Fatalf("highlight = %q, want A", f.nav.Highlighted().Title)
	}
}

func TestResetIdempotent(t *testing.T) {
	f := newNavFixture(t)
	apply(t, f.nav, SymRight, SymRight)
	apply(t, f.nav, SymReset)
	if f.nav.Highlighted() != f.a {
		t.Fatalf("after RESET highlight = %q, want A", f.nav.Highlighted().Title)
	}
	apply(t, f.nav, SymReset)
	if f.nav.Highlighted() != f.a {
		t.Fatalf("second RESET moved highlight to %q", f.nav.Highlighted().Title)
	}
}

func TestDownResolvesClosestProgramme(t *testing.T) {
	f := newNavFixture(t)
	apply(t, f.nav, SymRight) // B, anchor 10:00
	apply(t, f.nav, SymDown)

	got := f.nav.Highlighted()
	if got == nil || got.ChannelID != "sbs1" || got.Title != "D" {
		t.Fatalf("after DOWN highlight = %v, want D on sbs1", got)
	}
	// Vertical moves keep the anchor where it was.
	if !f.nav.Anchor().Equal(at(t, "2024-01-01 10:00")) {
		t.Fatalf("anchor = %s, want 10:00", f.nav.Anchor())
	}
}

func TestDownAtBottomEdgeIsNoOp(t *testing.T) {
	f := newNavFixture(t)
	apply(t, f.nav, SymDown, SymDown)
	if got := f.nav.Highlighted(); got.ChannelID != "sbs1" {
		t.Fatalf("highlight = %v, want to stay on sbs1", got)
	}
	apply(t, f.nav, SymUp, SymUp)
	if got := f.nav.Highlighted(); got.ChannelID != "abc1" {
		t.Fatalf("highlight = %v, want to stay on abc1", got)
	}
}

func TestDownWalksBackForSparseChannel(t *testing.T) {
	a := navProg(t, "abc1", "A", "2024-01-01 09:00", "2024-01-01 10:00")
	old := navProg(t, "tele1", "Archive", "2023-12-31 22:00", "2023-12-31 23:00")

	channels := []*epg.Channel{
		{ID: "abc1", DisplayName: "ABC1"},
		{ID: "tele1", DisplayName: "Teletext"},
	}
	store := epg.NewProgramStore()
	src := &scriptedSource{
		store: store,
		data: map[string]map[string][]*epg.Programme{
			"abc1":  {"2024-01-01": {a}},
			"tele1": {"2023-12-31": {old}},
		},
	}
	nav := NewNavigator(channels, store, src, 30*time.Minute, 0, log.NullLogger())
	w := epg.NewWindow(at(t, "2024-01-01 09:00"), 2*time.Hour, 30*time.Minute)
	if err := nav.Init(context.Background(), w); err != nil {
		t.Fatalf("Init: %v", err)
	}

	apply(t, nav, SymDown)
	if nav.Highlighted() != old {
		t.Fatalf("highlight = %v, want previous-day programme", nav.Highlighted())
	}
	// The window is pulled back until the highlight is in view again.
	if !nav.Window().Start.Before(old.Stop) {
		t.Fatalf("window %v does not reach highlight", nav.Window())
	}
}

func TestNextDayRecentersWindow(t *testing.T) {
	a := navProg(t, "abc1", "A", "2024-01-01 09:00", "2024-01-01 10:00")
	d := navProg(t, "abc1", "Tomorrow", "2024-01-02 09:00", "2024-01-02 10:00")

	channels := []*epg.Channel{{ID: "abc1", DisplayName: "ABC1"}}
	store := epg.NewProgramStore()
	src := &scriptedSource{
		store: store,
		data: map[string]map[string][]*epg.Programme{
			"abc1": {
				"2024-01-01": {a},
				"2024-01-02": {d},
			},
		},
	}
	nav := NewNavigator(channels, store, src, 30*time.Minute, 0, log.NullLogger())
	w := epg.NewWindow(at(t, "2024-01-01 09:00"), 2*time.Hour, 30*time.Minute)
	if err := nav.Init(context.Background(), w); err != nil {
		t.Fatalf("Init: %v", err)
	}

	apply(t, nav, SymNextDay)
	if nav.Highlighted() != d {
		t.Fatalf("highlight = %v, want next-day programme", nav.Highlighted())
	}
	win := nav.Window()
	if !win.Contains(d.Start) {
		t.Fatalf("window %v does not contain the jump target", win)
	}

	apply(t, nav, SymPrevDay)
	if nav.Highlighted() != a {
		t.Fatalf("highlight after PREV_DAY = %v, want original programme", nav.Highlighted())
	}
}

func TestPrevDayResolvesNearestProgramme(t *testing.T) {
	f := newNavFixture(t)
	anchor := f.nav.Anchor()
	apply(t, f.nav, SymPrevDay)
	// The day before is confirmed empty, so the jump resolves across the
	// full listing and lands back on the nearest programme.
	if f.nav.Highlighted() != f.a {
		t.Fatalf("highlight = %v, want A", f.nav.Highlighted())
	}
	if !f.nav.Anchor().Equal(anchor) {
		t.Fatalf("anchor = %s, want %s", f.nav.Anchor(), anchor)
	}
}

func TestSelectLeavesStateAlone(t *testing.T) {
	f := newNavFixture(t)
	before := f.nav.Window()
	apply(t, f.nav, SymSelect)
	if f.nav.Highlighted() != f.a || f.nav.Window() != before {
		t.Fatal("SELECT changed navigation state")
	}
}
