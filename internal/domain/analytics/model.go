package analytics

import (
	"context"
	"time"
)

// EventType names a tracked dashboard interaction.
type EventType string

const (
	EventPageView       EventType = "page_view"
	EventBeachView      EventType = "beach_view"
	EventAlertClick     EventType = "alert_click"
	EventFlagView       EventType = "flag_view"
	EventMapInteraction EventType = "map_interaction"
	EventLanguageChange EventType = "language_change"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventPageView, EventBeachView, EventAlertClick, EventFlagView, EventMapInteraction, EventLanguageChange:
		return true
	}
	return false
}

// Event is one tracked interaction.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// TrackRequest is the client payload.
type TrackRequest struct {
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// BeachViews counts views of one beach.
type BeachViews struct {
	BeachID   string `json:"beachId"`
	BeachName string `json:"beachName"`
	Views     int    `json:"views"`
}

// DailyCount is the number of events on one UTC day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TimeRange is the window a Stats value covers.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// Stats summarises events over a window.
type Stats struct {
	TotalEvents    int            `json:"totalEvents"`
	PageViews      int            `json:"pageViews"`
	BeachViews     int            `json:"beachViews"`
	AlertClicks    int            `json:"alertClicks"`
	AlertClickRate string         `json:"alertClickRate"`
	TopBeaches     []BeachViews   `json:"topBeaches"`
	DailyStats     []DailyCount   `json:"dailyStats"`
	EventTypes     map[string]int `json:"eventTypes"`
	TimeRange      TimeRange      `json:"timeRange"`
}

// Repository persists events, oldest first.
type Repository interface {
	List(ctx context.Context) ([]Event, error)
	ReplaceAll(ctx context.Context, items []Event) error
}

// Config bounds the event log.
type Config struct {
	MaxEvents int
}
