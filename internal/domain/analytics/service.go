package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	apperrors "github.com/yanqian/beachsafety/pkg/errors"
)

const (
	defaultMaxEvents = 10000
	defaultDays      = 7
	topBeachLimit    = 10
	dayLayout        = "2006-01-02"
)

var allowedWindows = map[int]bool{7: true, 30: true, 90: true}

// Service records dashboard events and summarises them.
type Service interface {
	Track(ctx context.Context, req TrackRequest) (Event, error)
	Stats(ctx context.Context, days int) (Stats, error)
}

type service struct {
	cfg    Config
	repo   Repository
	clock  clockwork.Clock
	logger *slog.Logger
	mu     sync.Mutex
}

// NewService wires the analytics domain.
func NewService(cfg Config, repo Repository, clock clockwork.Clock, logger *slog.Logger) Service {
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = defaultMaxEvents
	}
	return &service{
		cfg:    cfg,
		repo:   repo,
		clock:  clock,
		logger: logger.With("component", "analytics.service"),
	}
}

func (s *service) Track(ctx context.Context, req TrackRequest) (Event, error) {
	eventType := EventType(strings.TrimSpace(req.Type))
	if !eventType.Valid() {
		return Event{}, apperrors.Wrap(apperrors.CodeInvalidInput, "unknown event type", nil)
	}
	ts := s.clock.Now().UTC()
	if raw := strings.TrimSpace(req.Timestamp); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Event{}, apperrors.Wrap(apperrors.CodeInvalidInput, "timestamp must be RFC3339", err)
		}
		ts = parsed.UTC()
	}
	data := req.Data
	if data == nil {
		data = map[string]any{}
	}
	event := Event{
		ID:        "event-" + uuid.NewString(),
		Type:      eventType,
		Timestamp: ts,
		Data:      data,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.repo.List(ctx)
	if err != nil {
		return Event{}, apperrors.Wrap(apperrors.CodeStoreError, "failed to read analytics events", err)
	}
	events = append(events, event)
	if over := len(events) - s.cfg.MaxEvents; over > 0 {
		events = events[over:]
	}
	if err := s.repo.ReplaceAll(ctx, events); err != nil {
		return Event{}, apperrors.Wrap(apperrors.CodeStoreError, "failed to save analytics event", err)
	}
	s.logger.Debug("analytics event tracked", "type", event.Type)
	return event, nil
}

// NormalizeDays maps unsupported windows to the default week.
func NormalizeDays(days int) int {
	if allowedWindows[days] {
		return days
	}
	return defaultDays
}

func (s *service) Stats(ctx context.Context, days int) (Stats, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return Stats{}, apperrors.Wrap(apperrors.CodeStoreError, "failed to read analytics events", err)
	}
	return Summarize(events, NormalizeDays(days), s.clock.Now().UTC()), nil
}

// Summarize computes Stats for events in the days before now.
func Summarize(events []Event, days int, now time.Time) Stats {
	start := now.Add(-time.Duration(days) * 24 * time.Hour)

	daily := make([]DailyCount, days)
	dayIndex := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := now.Add(-time.Duration(days-1-i) * 24 * time.Hour).Format(dayLayout)
		daily[i] = DailyCount{Date: date}
		dayIndex[date] = i
	}

	stats := Stats{
		EventTypes: map[string]int{},
		TimeRange:  TimeRange{Start: start, End: now, Days: days},
	}
	var (
		beachOrder []string
		beachViews = map[string]*BeachViews{}
	)
	for _, e := range events {
		if e.Timestamp.Before(start) {
			continue
		}
		stats.TotalEvents++
		stats.EventTypes[string(e.Type)]++
		if i, ok := dayIndex[e.Timestamp.UTC().Format(dayLayout)]; ok {
			daily[i].Count++
		}
		switch e.Type {
		case EventPageView:
			stats.PageViews++
		case EventAlertClick:
			stats.AlertClicks++
		case EventBeachView:
			stats.BeachViews++
			id := dataString(e.Data, "beachId")
			entry, ok := beachViews[id]
			if !ok {
				name := dataString(e.Data, "beachName")
				if name == "" {
					name = id
				}
				entry = &BeachViews{BeachID: id, BeachName: name}
				beachViews[id] = entry
				beachOrder = append(beachOrder, id)
			}
			entry.Views++
		}
	}

	top := make([]BeachViews, 0, len(beachOrder))
	for _, id := range beachOrder {
		top = append(top, *beachViews[id])
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Views > top[j].Views })
	if len(top) > topBeachLimit {
		top = top[:topBeachLimit]
	}
	stats.TopBeaches = top
	stats.DailyStats = daily

	rate := 0.0
	if stats.BeachViews > 0 {
		rate = float64(stats.AlertClicks) / float64(stats.BeachViews) * 100
	}
	stats.AlertClickRate = fmt.Sprintf("%.1f%%", rate)
	return stats
}

func dataString(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
