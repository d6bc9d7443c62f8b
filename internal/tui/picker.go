package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/bell345/zapper/internal/epg"
	"github.com/bell345/zapper/internal/search"
	"github.com/bell345/zapper/internal/tui/styles"
)

// pickerState enumerates the picker's explicit states. The flow is a loop,
// not recursion: Searching → (Listing when a query has several matches) →
// Confirming → back to Searching or Done.
type pickerState int

const (
	pickerSearching pickerState = iota
	pickerListing
	pickerConfirming
	pickerDone
)

const pickerPreviewLines = 8

// Picker is the interactive channel selection flow shown before the guide
// opens when no channel IDs were given on the command line.
type Picker struct {
	channels []*epg.Channel

	state     pickerState
	input     textinput.Model
	matches   []*epg.Channel
	cursor    int
	candidate *epg.Channel

	selection []*epg.Channel
	selected  map[string]bool

	listSelected bool // Confirming: show the running selection
	width        int
}

// channelSource adapts the channel list for fuzzy matching.
type channelSource []*epg.Channel

func (s channelSource) String(i int) string { return s[i].ID + " " + s[i].DisplayName }
func (s channelSource) Len() int            { return len(s) }

func NewPicker(channels []*epg.Channel) Picker {
	input := textinput.New()
	input.Placeholder = "channel ID or search query"
	input.Prompt = "> "
	input.Focus()
	return Picker{
		channels: channels,
		input:    input,
		selected: make(map[string]bool),
	}
}

// Done reports whether the selection is complete.
func (p Picker) Done() bool { return p.state == pickerDone }

// Selection returns the chosen channels in pick order.
func (p Picker) Selection() []*epg.Channel { return p.selection }

func (p Picker) SetWidth(w int) Picker {
	p.width = w
	return p
}

// available returns the channels not yet selected.
func (p Picker) available() []*epg.Channel {
	out := make([]*epg.Channel, 0, len(p.channels))
	for _, c := range p.channels {
		if !p.selected[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func (p Picker) Update(msg tea.Msg) (Picker, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return p, cmd
	}

	switch p.state {
	case pickerSearching:
		return p.updateSearching(keyMsg)
	case pickerListing:
		return p.updateListing(keyMsg)
	case pickerConfirming:
		return p.updateConfirming(keyMsg)
	}
	return p, nil
}

func (p Picker) updateSearching(msg tea.KeyMsg) (Picker, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		query := strings.TrimSpace(p.input.Value())
		if query == "" {
			return p, nil
		}
		p.matches = search.Channels(query, p.available())
		p.cursor = 0
		switch len(p.matches) {
		case 0:
			p.candidate = nil
			p.state = pickerConfirming
		case 1:
			p.candidate = p.matches[0]
			p.state = pickerConfirming
		default:
			p.state = pickerListing
		}
		return p, nil
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Picker) updateListing(msg tea.KeyMsg) (Picker, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.matches)-1 {
			p.cursor++
		}
	case "enter":
		p.candidate = p.matches[p.cursor]
		p.state = pickerConfirming
	case "r", "esc":
		p = p.retry()
	}
	return p, nil
}

func (p Picker) updateConfirming(msg tea.KeyMsg) (Picker, tea.Cmd) {
	switch msg.String() {
	case "c":
		if p.candidate != nil {
			p = p.add(p.candidate)
			p = p.retry()
		}
	case "f":
		if p.candidate != nil {
			p = p.add(p.candidate)
		}
		if len(p.selection) > 0 {
			p.state = pickerDone
		} else {
			p = p.retry()
		}
	case "l":
		p.listSelected = !p.listSelected
	case "r", "esc":
		p = p.retry()
	}
	return p, nil
}

func (p Picker) add(c *epg.Channel) Picker {
	if !p.selected[c.ID] {
		p.selected[c.ID] = true
		p.selection = append(p.selection, c)
	}
	return p
}

func (p Picker) retry() Picker {
	p.state = pickerSearching
	p.candidate = nil
	p.matches = nil
	p.cursor = 0
	p.listSelected = false
	p.input.SetValue("")
	return p
}

func (p Picker) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Select channels"))
	b.WriteString("\n\n")

	switch p.state {
	case pickerSearching:
		b.WriteString(p.input.View())
		b.WriteString("\n\n")
		p.renderPreview(&b)

	case pickerListing:
		fmt.Fprintf(&b, "%d matches:\n\n", len(p.matches))
		for i, c := range p.matches {
			line := c.String()
			if i == p.cursor {
				line = styles.HighlightStyle.Render(line)
			}
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render("enter select · r retry"))

	case pickerConfirming:
		if p.candidate != nil {
			fmt.Fprintf(&b, "Match: %s\n\n", styles.AccentStyle.Render(p.candidate.String()))
			b.WriteString(styles.DimStyle.Render("c add and continue · f add and finish · l list · r retry"))
		} else {
			b.WriteString("No matches found.\n\n")
			b.WriteString(styles.DimStyle.Render("f finish · l list · r retry"))
		}
		if p.listSelected {
			b.WriteString("\n\nSelected:\n")
			for _, c := range p.selection {
				b.WriteString("  " + c.String() + "\n")
			}
			if p.candidate != nil {
				b.WriteString("  " + styles.AccentStyle.Render("[*] "+p.candidate.String()) + "\n")
			}
		}
	}

	if len(p.selection) > 0 && p.state == pickerSearching {
		fmt.Fprintf(&b, "\n%s", styles.DimStyle.Render(fmt.Sprintf("%d selected", len(p.selection))))
	}
	return b.String()
}

// renderPreview shows a live fuzzy-filtered slice of the channel list
// under the search input.
func (p Picker) renderPreview(b *strings.Builder) {
	query := strings.TrimSpace(p.input.Value())
	avail := p.available()

	var shown []*epg.Channel
	if query == "" {
		shown = avail
	} else {
		for _, m := range fuzzy.FindFrom(query, channelSource(avail)) {
			shown = append(shown, avail[m.Index])
		}
	}
	for i, c := range shown {
		if i >= pickerPreviewLines {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  … %d more", len(shown)-i)))
			b.WriteString("\n")
			break
		}
		b.WriteString(styles.SubtitleStyle.Render("  " + c.String()))
		b.WriteString("\n")
	}
}
