package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bell345/zapper/internal/epg"
	"github.com/bell345/zapper/internal/xmltv"
)

// Command factories for async operations. Each blocking fetch runs inside
// a command so the spinner keeps animating; the model refuses further
// navigation input until the in-flight command reports back, preserving
// the one-transition-at-a-time loop.

const fetchTimeout = 60 * time.Second

// loadChannelsCmd fetches and decodes the channel index document.
func loadChannelsCmd(fetch func(context.Context, string) ([]byte, error), url string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		data, err := fetch(ctx, url)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading channels", Fatal: true}
		}
		channels, err := xmltv.DecodeChannels(data)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading channels", Fatal: true}
		}
		return ChannelsLoadedMsg{Channels: channels}
	}
}

// initGuideCmd loads the initial window and positions the navigator. A
// failure here is fatal: no partial guide state is shown when the very
// first load fails.
func initGuideCmd(nav *Navigator, w epg.Window) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if err := nav.Init(ctx, w); err != nil {
			return ErrMsg{Err: err, Context: "loading guide", Fatal: true}
		}
		return GuideReadyMsg{}
	}
}

// applyCmd runs one navigation transition, including any fetches it needs.
func applyCmd(nav *Navigator, sym Symbol) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		return NavAppliedMsg{Symbol: sym, Err: nav.Apply(ctx, sym)}
	}
}

// clearStatusCmd clears the status line after a delay.
func clearStatusCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
