package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	White     = lipgloss.Color("#F9FAFB")
	LightGray = lipgloss.Color("#9CA3AF")
	DimGray   = lipgloss.Color("#6B7280")
	Red       = lipgloss.Color("#EF4444")
	Amber     = lipgloss.Color("#F59E0B")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Amber)
)

// Grid styles
var (
	// ChannelLabelStyle renders the channel-ID column at the left of each
	// grid row.
	ChannelLabelStyle = lipgloss.NewStyle().
				Foreground(White).
				Bold(true)

	// HighlightStyle composites the selected programme's span in inverse
	// video.
	HighlightStyle = lipgloss.NewStyle().Reverse(true)

	// NowMarkStyle marks the current time's column on the time scale.
	NowMarkStyle = lipgloss.NewStyle().Reverse(true)
)
