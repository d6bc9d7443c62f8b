package tui

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/bell345/zapper/internal/epg"
	"github.com/bell345/zapper/internal/tui/styles"
)

// tickWidth is the rendered width of one time-scale label ("15:04").
const tickWidth = 5

// scaleQuantum is the starting tick interval; it is halved until the tick
// labels fit the available width.
const scaleQuantum = 30 * time.Minute

var ansiRE = regexp.MustCompile("\x1b\\[[^\x40-\x7e]*[\x40-\x7e]")

// escLen sums the byte lengths of ANSI escape sequences in s[:end], so a
// visual column can be converted into a byte offset.
func escLen(s string, end int) int {
	if end > len(s) {
		end = len(s)
	}
	total := 0
	for _, m := range ansiRE.FindAllString(s[:end], -1) {
		total += len(m)
	}
	return total
}

// cover overwrites full with sub starting at start, truncating the result
// back to the original length.
func cover(full, sub string, start int) string {
	if start < 0 {
		start = 0
	}
	if start >= len(full) {
		return full
	}
	end := start + len(sub)
	if end > len(full) {
		return full[:start] + sub[:len(full)-start]
	}
	return full[:start] + sub + full[end:]
}

// fillTo blanks full from start up to (but not including) the next
// delimiter, or to the end of the row when none follows. This stops a
// previously placed longer label from bleeding past the following
// programme's marker.
func fillTo(full string, start int, delim byte) string {
	if start < 0 {
		start = 0
	}
	if start >= len(full) {
		return full
	}
	end := strings.IndexByte(full[start:], delim)
	if end == -1 {
		end = len(full)
	} else {
		end += start
	}
	return cover(full, strings.Repeat(" ", end-start), start)
}

// timeToPos projects t onto a row of avail columns: the distance from the
// window start as a fraction of the window length, rounded, clamped into
// [0, avail].
func timeToPos(t time.Time, w epg.Window, avail int) int {
	frac := float64(t.Sub(w.Start)) / float64(w.Duration())
	pos := int(math.Round(frac * float64(avail)))
	if pos < 0 {
		return 0
	}
	if pos > avail {
		return avail
	}
	return pos
}

// RenderGrid projects the window's listings onto terminal rows: one time
// scale header plus one row per channel, in channel-list order.
//
// Placement admits only programmes whose start lies inside the window; a
// programme still running from before the window start is not drawn. The
// highlighted programme's span is composited in inverse video, terminated
// at the next '|' delimiter. Fails with epg.ErrEmptyWindow when no channel
// has anything to show.
func RenderGrid(channels []*epg.Channel, listings map[string][]*epg.Programme, w epg.Window, highlighted *epg.Programme, width int, now time.Time) ([]string, error) {
	total := 0
	for _, ch := range channels {
		total += len(listings[ch.ID])
	}
	if total == 0 {
		return nil, epg.ErrEmptyWindow
	}

	dateLabel := w.Start.Format(epg.ISODate)
	labelWidth := len(dateLabel)
	for _, ch := range channels {
		if len(ch.ID) > labelWidth {
			labelWidth = len(ch.ID)
		}
	}
	labelWidth++

	avail := width - labelWidth
	if avail < tickWidth {
		avail = tickWidth
	}

	rows := make([]string, 0, len(channels)+1)
	rows = append(rows, renderScale(dateLabel, labelWidth, avail, w, now))

	for _, ch := range channels {
		row := strings.Repeat(" ", avail)
		highlightCol := -1
		for _, p := range listings[ch.ID] {
			if p.Start.Before(w.Start) {
				continue
			}
			col := timeToPos(p.Start, w, avail)
			col += escLen(row, col)
			if p == highlighted {
				highlightCol = col
			}
			frag := "| " + p.Title
			row = cover(row, frag, col)
			row = fillTo(row, col+len(frag), '|')
		}
		if highlightCol != -1 {
			row = highlightSpan(row, highlightCol)
		}
		prefix := styles.ChannelLabelStyle.Render(pad(ch.ID, labelWidth))
		rows = append(rows, prefix+row)
	}
	return rows, nil
}

// renderScale builds the header row: the window's date in the label column,
// then evenly spaced tick labels, with the current time's column marked in
// inverse video when it falls inside the window.
func renderScale(dateLabel string, labelWidth, avail int, w epg.Window, now time.Time) string {
	gap := w.Duration()
	divisions := float64(gap) / float64(scaleQuantum)
	for divisions*(tickWidth+4) > float64(avail) {
		divisions /= 2
	}

	var ticks strings.Builder
	if n := int(divisions); n > 0 {
		spacing := int(math.Floor(float64(avail)/divisions)) - tickWidth
		step := time.Duration(float64(gap) / divisions)
		for i := 0; i < n; i++ {
			ticks.WriteString(w.Start.Add(step * time.Duration(i)).Format("15:04"))
			ticks.WriteString(strings.Repeat(" ", spacing))
		}
	}

	scale := ticks.String()
	if len(scale) < avail {
		scale += strings.Repeat(" ", avail-len(scale))
	}
	if w.Contains(now) {
		pos := timeToPos(now, w, avail)
		if pos < len(scale) {
			scale = scale[:pos] + styles.NowMarkStyle.Render(string(scale[pos])) + scale[pos+1:]
		}
	}
	return styles.DimStyle.Render(pad(dateLabel, labelWidth)) + scale
}

// highlightSpan wraps the span beginning at col and ending before the next
// '|' delimiter (or the row end) in the highlight style.
func highlightSpan(row string, col int) string {
	if col >= len(row) {
		return row
	}
	end := strings.IndexByte(row[col+1:], '|')
	if end == -1 {
		end = len(row)
	} else {
		end += col + 1
	}
	return row[:col] + styles.HighlightStyle.Render(row[col:end]) + row[end:]
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
