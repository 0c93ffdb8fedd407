package beach

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

//go:embed catalog.json
var embeddedCatalog []byte

// Catalog is the immutable reference fleet loaded at process start.
type Catalog struct {
	beaches []Beach
	index   map[string]int
}

// LoadCatalog reads the reference fleet from path, or from the embedded county
// catalog when path is empty. loadedAt stamps LastUpdated on every entry.
func LoadCatalog(path string, loadedAt time.Time) (*Catalog, error) {
	data := embeddedCatalog
	if p := strings.TrimSpace(path); p != "" {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read beach catalog: %w", err)
		}
		data = raw
	}
	var beaches []Beach
	if err := json.Unmarshal(data, &beaches); err != nil {
		return nil, fmt.Errorf("decode beach catalog: %w", err)
	}
	return NewCatalog(beaches, loadedAt)
}

// NewCatalog validates beaches and builds a catalog from them.
func NewCatalog(beaches []Beach, loadedAt time.Time) (*Catalog, error) {
	if len(beaches) == 0 {
		return nil, fmt.Errorf("beach catalog is empty")
	}
	c := &Catalog{
		beaches: make([]Beach, 0, len(beaches)),
		index:   make(map[string]int, len(beaches)),
	}
	for _, b := range beaches {
		if err := validate(b); err != nil {
			return nil, err
		}
		if _, dup := c.index[b.ID]; dup {
			return nil, fmt.Errorf("beach %q: duplicate id", b.ID)
		}
		entry := b.Clone()
		entry.Hazards = NormalizeHazards(entry.Hazards)
		if entry.Conditions.TideStatus == "" {
			entry.Conditions.TideStatus = TideUnknown
		}
		if entry.LastUpdated.IsZero() {
			entry.LastUpdated = loadedAt.UTC()
		}
		c.index[b.ID] = len(c.beaches)
		c.beaches = append(c.beaches, entry)
	}
	return c, nil
}

func validate(b Beach) error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("beach %q: id cannot be empty", b.Name)
	}
	switch b.Region {
	case RegionNorth, RegionCentral, RegionSouth:
	default:
		return fmt.Errorf("beach %q: unknown region %q", b.ID, b.Region)
	}
	if !b.FlagStatus.Valid() {
		return fmt.Errorf("beach %q: invalid flag status %q", b.ID, b.FlagStatus)
	}
	for _, h := range b.Hazards {
		if !h.Valid() {
			return fmt.Errorf("beach %q: unknown hazard %q", b.ID, h)
		}
	}
	return nil
}

// All returns a deep copy of the reference fleet in catalog order.
func (c *Catalog) All() []Beach {
	return CloneAll(c.beaches)
}

// Get returns a copy of the reference record for id.
func (c *Catalog) Get(id string) (Beach, bool) {
	i, ok := c.index[id]
	if !ok {
		return Beach{}, false
	}
	return c.beaches[i].Clone(), true
}

// Has reports whether id names a catalog beach.
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Len is the number of beaches in the catalog.
func (c *Catalog) Len() int {
	return len(c.beaches)
}
