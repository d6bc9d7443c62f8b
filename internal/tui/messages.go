package tui

import "github.com/bell345/zapper/internal/epg"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
	Fatal   bool
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ChannelsLoadedMsg signals that the channel index document has been
// fetched and decoded.
type ChannelsLoadedMsg struct {
	Channels []*epg.Channel
}

// GuideReadyMsg signals that the initial window's data is loaded and the
// navigator is positioned.
type GuideReadyMsg struct{}

// NavAppliedMsg signals that a navigation transition has finished its
// fetch-and-resolve pass.
type NavAppliedMsg struct {
	Symbol Symbol
	Err    error
}

// ClearStatusMsg clears the transient status line.
type ClearStatusMsg struct{}
