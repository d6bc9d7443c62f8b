package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bell345/zapper/internal/epg"
)

func pickerChannels() []*epg.Channel {
	return []*epg.Channel{
		{ID: "abc1", DisplayName: "ABC1"},
		{ID: "abc2", DisplayName: "ABC2"},
		{ID: "sbs1", DisplayName: "SBS ONE"},
	}
}

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func typeQuery(p Picker, q string) Picker {
	for _, r := range q {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return p
}

func TestPickerSingleMatchFlow(t *testing.T) {
	p := NewPicker(pickerChannels())
	p = typeQuery(p, "sbs1")
	p, _ = p.Update(enter)

	if p.state != pickerConfirming {
		t.Fatalf("state = %v, want confirming", p.state)
	}
	if p.candidate == nil || p.candidate.ID != "sbs1" {
		t.Fatalf("candidate = %v, want sbs1", p.candidate)
	}

	p, _ = p.Update(press("f"))
	if !p.Done() {
		t.Fatal("picker not done after add-and-finish")
	}
	sel := p.Selection()
	if len(sel) != 1 || sel[0].ID != "sbs1" {
		t.Fatalf("selection = %v", sel)
	}
}

func TestPickerMultiMatchGoesToListing(t *testing.T) {
	p := NewPicker(pickerChannels())
	p = typeQuery(p, "abc")
	p, _ = p.Update(enter)

	if p.state != pickerListing {
		t.Fatalf("state = %v, want listing", p.state)
	}
	if len(p.matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(p.matches))
	}

	// Pick the second match from the list.
	p, _ = p.Update(press("j"))
	p, _ = p.Update(enter)
	if p.candidate == nil || p.candidate.ID != "abc2" {
		t.Fatalf("candidate = %v, want abc2", p.candidate)
	}
}

func TestPickerAddAndContinue(t *testing.T) {
	p := NewPicker(pickerChannels())
	p = typeQuery(p, "abc1")
	p, _ = p.Update(enter)
	p, _ = p.Update(press("c"))

	// Back in the search state with the selection retained.
	if p.state != pickerSearching {
		t.Fatalf("state = %v, want searching", p.state)
	}
	if len(p.Selection()) != 1 {
		t.Fatalf("selection = %v", p.Selection())
	}

	// The already selected channel is out of the candidate pool; the same
	// query now matches nothing.
	p = typeQuery(p, "abc1")
	p, _ = p.Update(enter)
	if p.candidate != nil {
		t.Fatalf("candidate = %v, want none for already selected channel", p.candidate)
	}

	// Finishing with an empty candidate keeps the earlier pick.
	p, _ = p.Update(press("f"))
	if !p.Done() || len(p.Selection()) != 1 {
		t.Fatalf("done = %v selection = %v", p.Done(), p.Selection())
	}
}

func TestPickerRetryClearsQuery(t *testing.T) {
	p := NewPicker(pickerChannels())
	p = typeQuery(p, "abc1")
	p, _ = p.Update(enter)
	p, _ = p.Update(press("r"))

	if p.state != pickerSearching {
		t.Fatalf("state = %v, want searching", p.state)
	}
	if p.input.Value() != "" {
		t.Fatalf("input = %q, want cleared", p.input.Value())
	}
	if p.candidate != nil {
		t.Fatal("candidate survived retry")
	}
}

func TestPickerFinishWithNothingSelectedRetries(t *testing.T) {
	p := NewPicker(pickerChannels())
	p = typeQuery(p, "zzz")
	p, _ = p.Update(enter)

	// No matches and nothing selected; finish falls back to searching.
	p, _ = p.Update(press("f"))
	if p.Done() {
		t.Fatal("picker finished with an empty selection")
	}
	if p.state != pickerSearching {
		t.Fatalf("state = %v, want searching", p.state)
	}
}

func TestPickerEmptyQueryIgnored(t *testing.T) {
	p := NewPicker(pickerChannels())
	p, _ = p.Update(enter)
	if p.state != pickerSearching {
		t.Fatalf("state = %v, want searching after empty enter", p.state)
	}
}
