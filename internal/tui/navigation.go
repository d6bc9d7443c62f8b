package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/bell345/zapper/internal/epg"
)

// Mode is the top-level UI mode. Only EPG navigation is defined here;
// OPTIONS and CHANNELS are extension points (the channel picker hangs off
// CHANNELS in the app model).
type Mode int

const (
	ModeEPG Mode = iota
	ModeOptions
	ModeChannels
)

// Symbol is a decoded input event. Raw terminal bytes are mapped to
// symbols by the key layer before they reach the navigator, which never
// inspects key input itself.
type Symbol int

const (
	SymNone Symbol = iota
	SymLeft
	SymRight
	SymUp
	SymDown
	SymSelect
	SymReset
	SymNextDay
	SymPrevDay
	SymQuit
)

// maxWalkDays bounds the backward day-by-day search for a channel with no
// data near the anchor; past a week of confirmed-empty days the move is
// abandoned rather than crawling the whole archive.
const maxWalkDays = 7

// Ensurer resolves (channel, date) buckets on demand. Satisfied by
// *source.Source.
type Ensurer interface {
	Ensure(ctx context.Context, ch *epg.Channel, date string) error
	EnsureWindow(ctx context.Context, channels []*epg.Channel, w epg.Window) error
}

// Navigator is the cursor/time-window state machine. Its composite state is
// the window, the highlighted programme, the cursor anchor time and the
// mode; transitions are driven by input symbols.
//
// The clock is injected so debounce behavior and the "now" marker are
// deterministic under test. All fetching goes through the Ensurer; a
// transition that cannot get the data it needs resolves to "no movement"
// rather than an error.
type Navigator struct {
	channels []*epg.Channel
	store    *epg.ProgramStore
	source   Ensurer
	quantum  time.Duration
	cooldown time.Duration
	now      func() time.Time
	logger   *slog.Logger

	window      epg.Window
	highlighted *epg.Programme
	anchor      time.Time
	mode        Mode
	lastShift   time.Time
}

func NewNavigator(channels []*epg.Channel, store *epg.ProgramStore, src Ensurer, quantum, cooldown time.Duration, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{
		channels: channels,
		store:    store,
		source:   src,
		quantum:  quantum,
		cooldown: cooldown,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the wall clock. Tests inject a fake.
func (n *Navigator) WithClock(now func() time.Time) *Navigator {
	n.now = now
	return n
}

func (n *Navigator) Window() epg.Window           { return n.window }
func (n *Navigator) Highlighted() *epg.Programme  { return n.highlighted }
func (n *Navigator) Anchor() time.Time            { return n.anchor }
func (n *Navigator) Mode() Mode                   { return n.mode }
func (n *Navigator) SetMode(m Mode)               { n.mode = m }
func (n *Navigator) Channels() []*epg.Channel     { return n.channels }
func (n *Navigator) Store() *epg.ProgramStore     { return n.store }
func (n *Navigator) Now() time.Time               { return n.now() }

// Init aligns and adopts the starting window, ensures its data coverage and
// highlights the first programme found in channel-list order. An empty
// initial window is an error: there is nothing to navigate.
func (n *Navigator) Init(ctx context.Context, w epg.Window) error {
	n.window = w.Aligned(n.quantum)
	if err := n.source.EnsureWindow(ctx, n.channels, n.window); err != nil {
		return err
	}
	n.resetHighlight()
	if n.highlighted == nil {
		return epg.ErrEmptyWindow
	}
	return nil
}

// Apply runs one state transition for the given input symbol. Transient
// fetch failures mid-transition resolve to no movement; Apply only fails
// when the post-transition coverage fetch fails hard.
func (n *Navigator) Apply(ctx context.Context, sym Symbol) error {
	if n.mode != ModeEPG {
		return nil
	}

	switch sym {
	case SymLeft:
		n.moveHorizontal(ctx, -1)
	case SymRight:
		n.moveHorizontal(ctx, +1)
	case SymUp:
		n.moveVertical(ctx, -1)
	case SymDown:
		n.moveVertical(ctx, +1)
	case SymReset:
		n.resetHighlight()
	case SymNextDay:
		n.jumpDay(ctx, +1)
	case SymPrevDay:
		n.jumpDay(ctx, -1)
	case SymSelect, SymNone:
		// SELECT surfaces a detail view in the app model; navigation state
		// does not change. Both still run the update pass below.
	}

	n.correctWindow()
	return n.ensureCoverage(ctx)
}

// moveHorizontal moves the highlight within the current channel's window
// listing, or time-travels the window when the highlight is already at the
// listing's edge.
func (n *Navigator) moveHorizontal(ctx context.Context, dir int) {
	if n.highlighted == nil {
		n.resetHighlight()
		return
	}
	listing := n.store.Listing(n.highlighted.ChannelID, n.window)
	i := indexOf(listing, n.highlighted)
	if i == -1 {
		n.resetHighlight()
		return
	}
	if j := i + dir; j >= 0 && j < len(listing) {
		n.setHighlight(listing[j])
		return
	}
	n.shiftWindow(ctx, dir, false)
}

// shiftWindow travels the window by one quantum. Edge-triggered shifts are
// debounced against the cooldown so a held key cannot race ahead of the
// data; correction shifts bypass it. The highlight is re-resolved against
// the anchor because the listing set itself changes.
func (n *Navigator) shiftWindow(ctx context.Context, dir int, bypassDebounce bool) {
	if !bypassDebounce {
		if n.now().Sub(n.lastShift) < n.cooldown {
			return
		}
		n.lastShift = n.now()
	}

	channelID := n.highlighted.ChannelID
	n.window = n.window.Shift(time.Duration(dir) * n.quantum)
	if err := n.ensureCoverage(ctx); err != nil {
		n.logger.Warn("coverage fetch failed after window shift", "error", err)
	}

	listing := n.store.Listing(channelID, n.window)
	if p := closestTo(listing, n.anchor, n.window); p != nil {
		n.setHighlight(p)
	} else {
		n.resetHighlight()
	}
}

// moveVertical moves the highlight to the adjacent channel, resolving the
// programme closest to the anchor time. When the target channel has no
// data in the window, buckets are fetched walking backward day by day; a
// fetch failure or an empty walk yields no movement.
func (n *Navigator) moveVertical(ctx context.Context, dir int) {
	if n.highlighted == nil {
		n.resetHighlight()
		return
	}
	j := epg.IndexOf(n.channels, n.highlighted.ChannelID)
	if j == -1 {
		n.resetHighlight()
		return
	}
	j += dir
	if j < 0 || j >= len(n.channels) {
		return
	}
	target := n.channels[j]

	p := closestTo(n.store.Listing(target.ID, n.window), n.anchor, n.window)
	if p == nil {
		p = n.walkBack(ctx, target)
	}
	if p == nil {
		return
	}
	n.highlighted = p
}

// walkBack ensures the target channel's buckets starting at the anchor's
// date and walking backward until one is non-empty, then resolves the
// programme closest to the anchor in it.
func (n *Navigator) walkBack(ctx context.Context, target *epg.Channel) *epg.Programme {
	for i := 0; i < maxWalkDays; i++ {
		date := n.anchor.AddDate(0, 0, -i).Format(epg.ISODate)
		if err := n.source.Ensure(ctx, target, date); err != nil {
			n.logger.Warn("fetch failed during channel move", "channel", target.ID, "date", date, "error", err)
			return nil
		}
		if bucket := n.store.Bucket(target.ID, date); len(bucket) > 0 {
			return closestUnbounded(bucket, n.anchor)
		}
	}
	return nil
}

// jumpDay advances the anchor by whole days and re-resolves against the
// channel's full, unwindowed listing, recentering the window on the result.
// When the target day yields nothing the jump is abandoned and the anchor
// restored.
func (n *Navigator) jumpDay(ctx context.Context, dir int) {
	if n.highlighted == nil {
		n.resetHighlight()
		return
	}
	ch := n.channelOf(n.highlighted)
	if ch == nil {
		return
	}

	prevAnchor := n.anchor
	n.anchor = n.anchor.AddDate(0, 0, dir)

	if err := n.source.Ensure(ctx, ch, n.anchor.Format(epg.ISODate)); err != nil {
		n.logger.Warn("fetch failed during day jump", "channel", ch.ID, "error", err)
		n.anchor = prevAnchor
		return
	}

	p := closestUnbounded(n.store.FullListing(ch.ID), n.anchor)
	if p == nil {
		n.anchor = prevAnchor
		return
	}

	n.highlighted = p
	half := n.window.Duration() / 2
	n.window = epg.NewWindow(p.Start.Add(-half), n.window.Duration(), n.quantum)
	n.anchor = n.window.Clamp(p.Start)
}

// resetHighlight re-establishes the highlight on the first programme, in
// channel-list order, inside the current window. Idempotent.
func (n *Navigator) resetHighlight() {
	for _, ch := range n.channels {
		if listing := n.store.Listing(ch.ID, n.window); len(listing) > 0 {
			n.setHighlight(listing[0])
			return
		}
	}
	n.highlighted = nil
}

func (n *Navigator) setHighlight(p *epg.Programme) {
	n.highlighted = p
	n.anchor = n.window.Clamp(p.Start)
}

// correctWindow shifts the window by whole quanta, bypassing the debounce,
// until the highlighted programme is visible again. Guarantees the next
// render always shows the highlight.
func (n *Navigator) correctWindow() {
	if n.highlighted == nil {
		return
	}
	for !n.highlighted.Start.Before(n.window.End) {
		n.window = n.window.Shift(n.quantum)
	}
	for !n.highlighted.Stop.After(n.window.Start) {
		n.window = n.window.Shift(-n.quantum)
	}
}

func (n *Navigator) ensureCoverage(ctx context.Context) error {
	return n.source.EnsureWindow(ctx, n.channels, n.window)
}

func (n *Navigator) channelOf(p *epg.Programme) *epg.Channel {
	if i := epg.IndexOf(n.channels, p.ChannelID); i != -1 {
		return n.channels[i]
	}
	return nil
}

func indexOf(listing []*epg.Programme, p *epg.Programme) int {
	for i, q := range listing {
		if q == p {
			return i
		}
	}
	return -1
}

// closestTo resolves the anchor against a window listing: the programme
// airing at the anchor time wins, otherwise the one whose clamped start is
// nearest to it.
func closestTo(listing []*epg.Programme, anchor time.Time, w epg.Window) *epg.Programme {
	var best *epg.Programme
	var bestDist time.Duration
	for _, p := range listing {
		if p.Airing(anchor) {
			return p
		}
		dist := absDuration(w.Clamp(p.Start).Sub(anchor))
		if best == nil || dist < bestDist {
			best, bestDist = p, dist
		}
	}
	return best
}

// closestUnbounded is closestTo without the window clamp, for resolutions
// against full listings.
func closestUnbounded(listing []*epg.Programme, anchor time.Time) *epg.Programme {
	var best *epg.Programme
	var bestDist time.Duration
	for _, p := range listing {
		if p.Airing(anchor) {
			return p
		}
		dist := absDuration(p.Start.Sub(anchor))
		if best == nil || dist < bestDist {
			best, bestDist = p, dist
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
