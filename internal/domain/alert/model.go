package alert

import (
	"context"
	"time"
)

// Priority ranks a county alert.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Language selects which audience sees an alert.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
	LanguageBoth    Language = "both"
)

// AllBeaches targets every beach.
const AllBeaches = "all"

// Alert is a county-issued broadcast.
type Alert struct {
	ID        string    `json:"id"`
	BeachID   string    `json:"beachId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  Priority  `json:"priority"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsActive  bool      `json:"isActive"`
	Language  Language  `json:"language"`
}

// ActiveAt reports whether the alert should be shown at now.
func (a Alert) ActiveAt(now time.Time) bool {
	return a.IsActive && a.ExpiresAt.After(now)
}

// CreateRequest is the admin payload for a new alert.
type CreateRequest struct {
	BeachID   string `json:"beachId"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Priority  string `json:"priority"`
	CreatedBy string `json:"createdBy"`
	ExpiresAt string `json:"expiresAt"`
	Language  string `json:"language"`
}

// Filter narrows the active list. Empty fields match everything.
type Filter struct {
	BeachID  string
	Language string
}

// Repository persists alerts.
type Repository interface {
	List(ctx context.Context) ([]Alert, error)
	ReplaceAll(ctx context.Context, items []Alert) error
}

// Invalidator drops derived state after a write.
type Invalidator interface {
	Invalidate()
}

// Catalog tells whether a beach id exists.
type Catalog interface {
	Has(id string) bool
}
