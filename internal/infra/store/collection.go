// Package store persists the admin-managed lists (overrides, custom alerts and
// analytics events) as one JSON document per key.
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Document keys.
const (
	KeyAdminUpdates    = "beach_admin_updates"
	KeyCustomAlerts    = "beach_custom_alerts"
	KeyAnalyticsEvents = "beach_analytics_events"
)

// Backend loads and saves raw documents. Load reports false when the key has
// never been written.
type Backend interface {
	Name() string
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Pinger is implemented by remote backends that can be health checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Collection is a typed list stored under a single key.
type Collection[T any] struct {
	backend Backend
	key     string
}

// NewCollection binds a list of T to key on backend.
func NewCollection[T any](backend Backend, key string) *Collection[T] {
	return &Collection[T]{backend: backend, key: key}
}

// Key returns the document key.
func (c *Collection[T]) Key() string {
	return c.key
}

// List returns every stored item. A missing document is an empty list.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	raw, ok, err := c.backend.Load(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("%s: load %s: %w", c.backend.Name(), c.key, err)
	}
	if !ok || len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%s: decode %s: %w", c.backend.Name(), c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// ReplaceAll overwrites the stored list with items.
func (c *Collection[T]) ReplaceAll(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: encode %s: %w", c.backend.Name(), c.key, err)
	}
	if err := c.backend.Save(ctx, c.key, payload); err != nil {
		return fmt.Errorf("%s: save %s: %w", c.backend.Name(), c.key, err)
	}
	return nil
}
