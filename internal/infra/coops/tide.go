package coops

import (
	"sort"
	"time"

	"github.com/yanqian/beachsafety/internal/domain/beach"
	"github.com/yanqian/beachsafety/internal/domain/conditions"
	"github.com/yanqian/beachsafety/pkg/units"
)

// SlackWindow is how long after an extremum the tide still reads as high or
// low water when the next predicted event has the same type.
const SlackWindow = 30 * time.Minute

// TideState is the tide at a moment, derived from hi/lo predictions.
type TideState struct {
	Status        beach.TideStatus
	CurrentHeight *float64
	Next          *conditions.TidePrediction
}

// DeriveTideState brackets now between the previous and next predicted
// extremes and classifies the tide. Height is interpolated linearly between
// the bracketing events and rounded to 0.1 ft. An alternating pair always
// reads Rising or Falling; the slack window only applies between two events
// of the same type.
func DeriveTideState(predictions []conditions.TidePrediction, now time.Time) TideState {
	sorted := append([]conditions.TidePrediction(nil), predictions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	var prev, next *conditions.TidePrediction
	for i := range sorted {
		if !sorted[i].Time.After(now) {
			prev = &sorted[i]
			continue
		}
		next = &sorted[i]
		break
	}

	state := TideState{Status: beach.TideUnknown}
	if next != nil {
		n := *next
		state.Next = &n
	}
	if prev == nil || next == nil {
		if prev != nil {
			h := prev.HeightFt
			state.CurrentHeight = &h
		}
		return state
	}

	sinceExtremum := now.Sub(prev.Time)
	switch {
	case prev.Type == "L" && next.Type == "H":
		state.Status = beach.TideRising
	case prev.Type == "H" && next.Type == "L":
		state.Status = beach.TideFalling
	case prev.Type == "H":
		state.Status = beach.TideFalling
		if sinceExtremum < SlackWindow {
			state.Status = beach.TideHigh
		}
	default:
		state.Status = beach.TideRising
		if sinceExtremum < SlackWindow {
			state.Status = beach.TideLow
		}
	}

	span := next.Time.Sub(prev.Time)
	progress := 0.0
	if span > 0 {
		progress = float64(sinceExtremum) / float64(span)
	}
	height := units.Round(prev.HeightFt+(next.HeightFt-prev.HeightFt)*progress, 1)
	state.CurrentHeight = &height
	return state
}
