package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/bell345/zapper/internal/cache"
	"github.com/bell345/zapper/internal/config"
	"github.com/bell345/zapper/internal/epg"
	"github.com/bell345/zapper/internal/log"
	"github.com/bell345/zapper/internal/source"
	"github.com/bell345/zapper/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var (
		showVersion bool
		channelURL  string
		dateStr     string
		timeStr     string
		rangeStr    string
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&channelURL, "u", "", "URL of the channel index document")
	flag.StringVar(&channelURL, "channel-url", "", "URL of the channel index document")
	flag.StringVar(&dateStr, "d", "", "date to query (YYYY-MM-DD, default today)")
	flag.StringVar(&dateStr, "date", "", "date to query (YYYY-MM-DD, default today)")
	flag.StringVar(&timeStr, "t", "", "time the window starts at (HH:MM, default now)")
	flag.StringVar(&timeStr, "time", "", "time the window starts at (HH:MM, default now)")
	flag.StringVar(&rangeStr, "r", "", "window length (HH:MM:SS or Go duration, default 2h)")
	flag.StringVar(&rangeStr, "range", "", "window length (HH:MM:SS or Go duration, default 2h)")
	flag.Parse()

	if showVersion {
		fmt.Printf("zapper %s\n", Version)
		return
	}

	if err := run(channelURL, dateStr, timeStr, rangeStr, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(channelURL, dateStr, timeStr, rangeStr string, channelIDs []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("zapper needs an interactive terminal")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if channelURL == "" {
		channelURL = cfg.ChannelURL
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)
	logger.Info("starting zapper", "version", Version)

	start, err := parseStart(dateStr, timeStr)
	if err != nil {
		return err
	}
	length := cfg.Guide.Range()
	if rangeStr != "" {
		if length, err = parseRange(rangeStr); err != nil {
			return err
		}
	}

	resources, err := cache.New(
		cfg.Cache.Dir,
		cache.WithUserAgent(cfg.Cache.UserAgent),
		cache.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to open resource cache: %w", err)
	}

	src := source.New(resources, epg.NewProgramStore(), logger)

	model := tui.NewModel(tui.Deps{
		Fetch:        resources.Fetch,
		Source:       src,
		ChannelURL:   channelURL,
		PreselectIDs: channelIDs,
		Start:        start,
		Range:        length,
		Quantum:      cfg.Guide.Quantum(),
		Cooldown:     cfg.Guide.Debounce(),
		Logger:       logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	if m, ok := final.(tui.Model); ok {
		if ferr := m.FatalErr(); ferr != nil {
			return ferr
		}
	}

	logger.Info("shutting down")
	return nil
}

// parseStart combines the -d and -t flags, defaulting each part to the
// current date and time.
func parseStart(dateStr, timeStr string) (time.Time, error) {
	now := time.Now()
	day := now
	if dateStr != "" {
		d, err := time.ParseInLocation(epg.ISODate, dateStr, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
		}
		day = d
	}
	hour, minute, sec := now.Hour(), now.Minute(), 0
	if timeStr != "" {
		parts := strings.Split(timeStr, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return time.Time{}, fmt.Errorf("invalid time %q", timeStr)
		}
		vals := make([]int, 3)
		for i, p := range parts {
			v, err := strconv.Atoi(p)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid time %q: %w", timeStr, err)
			}
			vals[i] = v
		}
		hour, minute, sec = vals[0], vals[1], vals[2]
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, sec, 0, time.Local), nil
}

// parseRange accepts either a Go duration ("2h30m") or clock notation
// ("02:30" / "02:30:00").
func parseRange(s string) (time.Duration, error) {
	if !strings.Contains(s, ":") {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid range %q: %w", s, err)
		}
		return d, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid range %q", s)
	}
	total := 0
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("invalid range %q: %w", s, err)
		}
		total = total*60 + v
	}
	// Two fields mean HH:MM, three mean HH:MM:SS.
	if len(parts) == 2 {
		total *= 60
	}
	return time.Duration(total) * time.Second, nil
}
