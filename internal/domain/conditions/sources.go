package conditions

import (
	"context"
	"time"

	"github.com/yanqian/beachsafety/internal/domain/beach"
)

// Source names used in logs, metrics and the merge tables.
const (
	SourceMarine  = "marine"
	SourceWeather = "weather"
	SourceBuoy    = "buoy"
	SourceTide    = "tide"
	SourceAlerts  = "alerts"
)

// MarineReading is the wave data for a point, in feet and seconds. Ocean
// current speed is in mph.
type MarineReading struct {
	WaveHeightFt     *float64
	WavePeriodS      *float64
	WaveDirection    *string
	SwellHeightFt    *float64
	CurrentSpeedMph  *float64
	CurrentDirection *string
}

// WeatherReading is the local surface weather for a point.
type WeatherReading struct {
	AirTempF      *float64
	UVIndex       *float64
	WindSpeedMph  *float64
	WindDirection *string
}

// BuoyReading is the latest observation from an offshore buoy.
type BuoyReading struct {
	Station       string
	ObservedAt    time.Time
	WaveHeightFt  *float64
	WindSpeedMph  *float64
	WindDirection *string
	WaterTempF    *float64
	AirTempF      *float64
}

// TidePrediction is one predicted high or low water.
type TidePrediction struct {
	Time     time.Time
	HeightFt float64
	Type     string // "H" or "L"
}

// TideReading is the derived tide state at the nearest station.
type TideReading struct {
	StationID       string
	StationName     string
	Status          beach.TideStatus
	CurrentHeightFt *float64
	Next            *TidePrediction
	Predictions     []TidePrediction
}

// HazardAlert is an active weather-service alert for the county zone.
type HazardAlert struct {
	ID          string    `json:"id"`
	Event       string    `json:"event"`
	Severity    string    `json:"severity"`
	Certainty   string    `json:"certainty"`
	Urgency     string    `json:"urgency"`
	Headline    string    `json:"headline"`
	Description string    `json:"description"`
	Instruction string    `json:"instruction,omitempty"`
	AreaDesc    string    `json:"areaDesc"`
	Onset       time.Time `json:"onset"`
	Expires     time.Time `json:"expires"`
}

// MarineSource fetches wave data for a coordinate.
type MarineSource interface {
	FetchMarine(ctx context.Context, at beach.Coordinates) (*MarineReading, error)
}

// WeatherSource fetches local weather for a coordinate.
type WeatherSource interface {
	FetchWeather(ctx context.Context, at beach.Coordinates) (*WeatherReading, error)
}

// BuoySource picks a buoy for the beach and fetches its latest observation.
type BuoySource interface {
	FetchBuoy(ctx context.Context, b beach.Beach) (*BuoyReading, error)
}

// TideSource fetches tide predictions from the station nearest a coordinate.
type TideSource interface {
	FetchTide(ctx context.Context, at beach.Coordinates) (*TideReading, error)
}

// HazardAlertSource lists the active alerts for the configured zone.
type HazardAlertSource interface {
	FetchAlerts(ctx context.Context) ([]HazardAlert, error)
}

// Sources bundles the adapters consulted per cycle. A nil source is treated as
// always absent.
type Sources struct {
	Marine  MarineSource
	Weather WeatherSource
	Buoy    BuoySource
	Tide    TideSource
	Alerts  HazardAlertSource
}

// Readings is the per-beach result of one fan-out. Absent sources are nil.
type Readings struct {
	Marine  *MarineReading
	Weather *WeatherReading
	Buoy    *BuoyReading
	Tide    *TideReading
}

// Available lists the sources that returned data, in merge order.
func (r Readings) Available() []string {
	out := make([]string, 0, 4)
	if r.Marine != nil {
		out = append(out, SourceMarine)
	}
	if r.Weather != nil {
		out = append(out, SourceWeather)
	}
	if r.Buoy != nil {
		out = append(out, SourceBuoy)
	}
	if r.Tide != nil {
		out = append(out, SourceTide)
	}
	return out
}
