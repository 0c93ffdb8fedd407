package conditions

import (
	"strings"

	"github.com/yanqian/beachsafety/internal/domain/beach"
)

const (
	highSurfThresholdFt    = 8.0
	strongWindThresholdMph = 20.0
	severitySevere         = "severe"
	severityExtreme        = "extreme"
	severityModerate       = "moderate"
)

var beachSafetyEvents = []string{
	"rip current statement",
	"high surf advisory",
	"high surf warning",
	"beach hazards statement",
	"coastal flood advisory",
	"coastal flood warning",
	"small craft advisory",
	"gale warning",
	"storm warning",
}

// alertHazards maps event-name fragments to the hazard they imply.
var alertHazards = []struct {
	fragment string
	hazard   beach.HazardType
}{
	{"rip current", beach.HazardRipCurrents},
	{"high surf", beach.HazardHighSurf},
}

// IsBeachSafetyAlert reports whether an alert event concerns swimmers and
// beachgoers.
func IsBeachSafetyAlert(event string) bool {
	e := strings.ToLower(event)
	for _, name := range beachSafetyEvents {
		if strings.Contains(e, name) {
			return true
		}
	}
	return false
}

// FilterBeachSafety keeps the beach-safety alerts in their original order.
func FilterBeachSafety(alerts []HazardAlert) []HazardAlert {
	out := make([]HazardAlert, 0, len(alerts))
	for _, a := range alerts {
		if IsBeachSafetyAlert(a.Event) {
			out = append(out, a)
		}
	}
	return out
}

// AlertFlag derives the fleet-wide flag implied by a set of alerts.
func AlertFlag(alerts []HazardAlert) beach.FlagStatus {
	flag := beach.FlagGreen
	for _, a := range alerts {
		switch strings.ToLower(a.Severity) {
		case severitySevere, severityExtreme:
			return beach.FlagRed
		case severityModerate:
			flag = beach.FlagYellow
		}
	}
	return flag
}

// Escalate returns the more severe of current and candidate. A flag never
// moves down.
func Escalate(current, candidate beach.FlagStatus) beach.FlagStatus {
	if candidate.Severity() > current.Severity() {
		return candidate
	}
	return current
}

// DeriveHazards unions the reference hazards with those implied by merged
// conditions and active alerts. Hazards are only ever added.
func DeriveHazards(base []beach.HazardType, c beach.Conditions, alerts []HazardAlert) []beach.HazardType {
	hazards := append([]beach.HazardType(nil), base...)
	if c.WaveHeight > highSurfThresholdFt {
		hazards = append(hazards, beach.HazardHighSurf)
	}
	if c.WindSpeed > strongWindThresholdMph {
		hazards = append(hazards, beach.HazardStrongWinds)
	}
	for _, a := range alerts {
		event := strings.ToLower(a.Event)
		for _, m := range alertHazards {
			if strings.Contains(event, m.fragment) {
				hazards = append(hazards, m.hazard)
			}
		}
	}
	return beach.NormalizeHazards(hazards)
}

// Advisory picks the headline of the first alert, or keeps fallback when there
// are no alerts.
func Advisory(alerts []HazardAlert, fallback string) string {
	if len(alerts) == 0 {
		return fallback
	}
	return alerts[0].Headline
}
