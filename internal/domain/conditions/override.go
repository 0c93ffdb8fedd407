package conditions

import (
	"context"

	"github.com/yanqian/beachsafety/internal/domain/beach"
)

// Override holds the admin-controlled fields of a snapshot. Nil fields leave
// the computed value untouched.
type Override struct {
	FlagStatus *beach.FlagStatus
	Advisory   *string
	Hazards    *[]beach.HazardType
}

// OverrideSource resolves the current override per beach id.
type OverrideSource interface {
	Latest(ctx context.Context) (map[string]Override, error)
}

// ApplyOverride replaces every field present on o.
func ApplyOverride(b beach.Beach, o Override) beach.Beach {
	if o.FlagStatus != nil && o.FlagStatus.Valid() {
		b.FlagStatus = *o.FlagStatus
	}
	if o.Advisory != nil {
		b.Advisory = *o.Advisory
	}
	if o.Hazards != nil {
		b.Hazards = beach.NormalizeHazards(*o.Hazards)
	}
	return b
}
