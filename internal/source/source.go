// Package source orchestrates per-channel, per-day listing fetches: it
// decides whether a fetch is needed at all, pulls bytes through the
// resource cache, decodes them, and resolves the day's bucket in the
// programme store.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/bell345/zapper/internal/epg"
	"github.com/bell345/zapper/internal/xmltv"
)

// Fetcher retrieves raw bytes for a resource identifier. Satisfied by
// *cache.Cache.
type Fetcher interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// Decoder turns raw listing bytes into programmes in document order.
type Decoder func(data []byte, channelID string) ([]*epg.Programme, error)

// Source resolves (channel, date) buckets in a programme store.
type Source struct {
	fetcher Fetcher
	store   *epg.ProgramStore
	decode  Decoder
	logger  *slog.Logger
}

func New(fetcher Fetcher, store *epg.ProgramStore, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		fetcher: fetcher,
		store:   store,
		decode:  xmltv.DecodeListing,
		logger:  logger,
	}
}

// WithDecoder overrides the listing decoder. Tests substitute a canned one.
func (s *Source) WithDecoder(d Decoder) *Source {
	s.decode = d
	return s
}

// Store returns the programme store the source populates.
func (s *Source) Store() *epg.ProgramStore { return s.store }

// Ensure resolves the channel's bucket for date (ISO form). It is a no-op
// when the bucket is already resolved, resolves to empty without a network
// call when the channel's valid-dates gate excludes the date, and treats an
// HTTP 404 as "this channel has no data for this date". Decode failures and
// non-404 fetch failures propagate.
func (s *Source) Ensure(ctx context.Context, ch *epg.Channel, date string) error {
	if s.store.Resolved(ch.ID, date) {
		return nil
	}
	if !ch.HasDate(date) {
		s.store.Put(ch.ID, date, nil)
		return nil
	}

	id, err := url.JoinPath(ch.BaseURL, fmt.Sprintf("%s_%s.xml.gz", ch.ID, date))
	if err != nil {
		return fmt.Errorf("listing url for %s: %w", ch.ID, err)
	}

	s.logger.Debug("ensuring listing", "channel", ch.ID, "date", date)

	data, err := s.fetcher.Fetch(ctx, id)
	if err != nil {
		if epg.NotFound(err) {
			s.logger.Debug("no listing for date", "channel", ch.ID, "date", date)
			s.store.Put(ch.ID, date, nil)
			return nil
		}
		return err
	}

	progs, err := s.decode(data, ch.ID)
	if err != nil {
		return err
	}
	s.store.Put(ch.ID, date, progs)
	s.logger.Debug("resolved listing", "channel", ch.ID, "date", date, "programmes", len(progs))
	return nil
}

// EnsureWindow resolves every channel's buckets for the dates the window
// touches.
func (s *Source) EnsureWindow(ctx context.Context, channels []*epg.Channel, w epg.Window) error {
	for _, ch := range channels {
		for _, date := range w.Dates() {
			if err := s.Ensure(ctx, ch, date); err != nil {
				return err
			}
		}
	}
	return nil
}
