package override

import (
	"context"
	"time"

	"github.com/yanqian/beachsafety/internal/domain/beach"
	"github.com/yanqian/beachsafety/internal/domain/conditions"
)

// Changes lists the fields an admin replaced. Nil fields were not touched.
type Changes struct {
	FlagStatus *beach.FlagStatus   `json:"flagStatus,omitempty"`
	Advisory   *string             `json:"advisory,omitempty"`
	Hazards    *[]beach.HazardType `json:"hazards,omitempty"`
}

// Empty reports whether no field is set.
func (c Changes) Empty() bool {
	return c.FlagStatus == nil && c.Advisory == nil && c.Hazards == nil
}

func (c Changes) layer() conditions.Override {
	return conditions.Override{
		FlagStatus: c.FlagStatus,
		Advisory:   c.Advisory,
		Hazards:    c.Hazards,
	}
}

// Override is one entry in the admin update log.
type Override struct {
	BeachID   string    `json:"beachId"`
	Timestamp time.Time `json:"timestamp"`
	UpdatedBy string    `json:"updatedBy"`
	Changes   Changes   `json:"changes"`
}

// SaveRequest is the admin form payload.
type SaveRequest struct {
	BeachID    string              `json:"beachId"`
	UpdatedBy  string              `json:"updatedBy"`
	FlagStatus *beach.FlagStatus   `json:"flagStatus"`
	Advisory   *string             `json:"advisory"`
	Hazards    *[]beach.HazardType `json:"hazards"`
}

// Repository persists the override log, newest first.
type Repository interface {
	List(ctx context.Context) ([]Override, error)
	ReplaceAll(ctx context.Context, items []Override) error
}

// Invalidator drops derived state after a write.
type Invalidator interface {
	Invalidate()
}

// Catalog tells whether a beach id exists.
type Catalog interface {
	Has(id string) bool
}

// Config bounds the log.
type Config struct {
	MaxEntries int
}
