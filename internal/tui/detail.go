package tui

import (
	"fmt"
	"strings"

	"github.com/bell345/zapper/internal/epg"
)

// renderDetail builds the programme detail text shown in the info area
// when a programme is selected: times, title with subtitle/production year,
// description, then credits and classification.
func renderDetail(p *epg.Programme) string {
	var b strings.Builder

	if !p.Start.Equal(p.Stop) {
		fmt.Fprintf(&b, "[%s - %s]\n", p.Start.Format("15:04"), p.Stop.Format("15:04"))
	}
	b.WriteString(strings.ToUpper(p.Title))

	var sub []string
	if p.SubTitle != "" {
		sub = append(sub, p.SubTitle)
	}
	if !p.AirDate.IsZero() && !p.AirDate.Equal(p.Start) {
		sub = append(sub, p.AirDate.Format("2006"))
	}
	if len(sub) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(sub, ", "))
	}

	if p.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(p.Description)
	}

	var attrs []string
	if p.Director != "" {
		attrs = append(attrs, "Directed by: "+p.Director)
	}
	if len(p.Actors) > 0 {
		attrs = append(attrs, "Featuring: "+strings.Join(p.Actors, ", "))
	}
	if len(p.Categories) > 0 {
		attrs = append(attrs, "Tags: "+strings.Join(p.Categories, ", "))
	}
	if p.Rating != "" {
		attrs = append(attrs, "Rated: "+p.Rating)
	}
	if len(attrs) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(attrs, "\n"))
	}

	return b.String()
}
