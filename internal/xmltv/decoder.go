// Package xmltv decodes XMLTV channel index and daily listing documents
// into the guide's domain types.
package xmltv

import (
	"bytes"
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bell345/zapper/internal/epg"
)

type xmlChannel struct {
	ID          string   `xml:"id,attr"`
	DisplayName []string `xml:"display-name"`
	BaseURL     []string `xml:"base-url"`
	DataFor     []string `xml:"datafor"`
}

type xmlProgramme struct {
	Start    string   `xml:"start,attr"`
	Stop     string   `xml:"stop,attr"`
	Channel  string   `xml:"channel,attr"`
	Title    string   `xml:"title"`
	SubTitle string   `xml:"sub-title"`
	Desc     string   `xml:"desc"`
	Date     string   `xml:"date"`
	Category []string `xml:"category"`
	Credits  struct {
		Director string   `xml:"director"`
		Actors   []string `xml:"actor"`
	} `xml:"credits"`
	Rating struct {
		Value string `xml:"value"`
	} `xml:"rating"`
}

// DecodeChannels parses a channel index document (optionally gzipped) into
// identity records. Channels without an id or base URL are skipped.
func DecodeChannels(data []byte) ([]*epg.Channel, error) {
	raw, err := maybeGunzip(data)
	if err != nil {
		return nil, fmt.Errorf("decode channels: %w: %v", epg.ErrDecode, err)
	}

	var channels []*epg.Channel
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode channels: %w: %v", epg.ErrDecode, err)
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "channel" {
			continue
		}
		var xc xmlChannel
		if err := decoder.DecodeElement(&xc, &se); err != nil {
			continue
		}
		if xc.ID == "" || len(xc.BaseURL) == 0 {
			continue
		}
		ch := &epg.Channel{
			ID:          xc.ID,
			DisplayName: firstNonEmpty(xc.DisplayName),
			BaseURL:     strings.TrimSpace(xc.BaseURL[0]),
		}
		if len(xc.DataFor) > 0 {
			ch.ValidDates = make(map[string]bool, len(xc.DataFor))
			for _, d := range xc.DataFor {
				if d = strings.TrimSpace(d); d != "" {
					ch.ValidDates[d] = true
				}
			}
		}
		channels = append(channels, ch)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("decode channels: %w: no channel elements found", epg.ErrDecode)
	}
	return channels, nil
}

// DecodeListing parses a daily listing document (optionally gzipped) into
// programmes in document order. channelID is the fetch context; it backs
// the channel reference when a programme element omits its channel
// attribute. Individually malformed programme elements are skipped rather
// than failing the whole document.
func DecodeListing(data []byte, channelID string) ([]*epg.Programme, error) {
	return decodeListing(data, channelID, time.Now())
}

func decodeListing(data []byte, channelID string, ref time.Time) ([]*epg.Programme, error) {
	raw, err := maybeGunzip(data)
	if err != nil {
		return nil, fmt.Errorf("decode listing %s: %w: %v", channelID, epg.ErrDecode, err)
	}

	var progs []*epg.Programme
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode listing %s: %w: %v", channelID, epg.ErrDecode, err)
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "programme" {
			continue
		}
		var xp xmlProgramme
		if err := decoder.DecodeElement(&xp, &se); err != nil {
			continue
		}
		progs = append(progs, toProgramme(xp, channelID, ref))
	}
	return progs, nil
}

func toProgramme(xp xmlProgramme, channelID string, ref time.Time) *epg.Programme {
	p := &epg.Programme{
		Title:       strings.TrimSpace(xp.Title),
		SubTitle:    strings.TrimSpace(xp.SubTitle),
		Description: strings.TrimSpace(xp.Desc),
		Director:    strings.TrimSpace(xp.Credits.Director),
		Rating:      strings.TrimSpace(xp.Rating.Value),
		ChannelID:   xp.Channel,
	}
	if p.Title == "" {
		p.Title = "???"
	}
	if p.ChannelID == "" {
		p.ChannelID = channelID
	}
	for _, a := range xp.Credits.Actors {
		if a = strings.TrimSpace(a); a != "" {
			p.Actors = append(p.Actors, a)
		}
	}
	for _, c := range xp.Category {
		if c = strings.TrimSpace(c); c != "" {
			p.Categories = append(p.Categories, c)
		}
	}
	if t, err := ParseTimestamp(xp.Date, ref, true); err == nil {
		p.AirDate = t
	}
	p.Start = ref
	if t, err := ParseTimestamp(xp.Start, ref, false); err == nil {
		p.Start = t
	}
	p.Stop = p.Start
	if t, err := ParseTimestamp(xp.Stop, ref, false); err == nil {
		p.Stop = t
	}
	return p
}

var gzipMagic = []byte{0x1f, 0x8b}

// maybeGunzip decompresses data when it carries the gzip magic, and passes
// plain documents through untouched.
func maybeGunzip(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
