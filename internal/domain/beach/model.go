package beach

import "time"

// Region groups beaches along the county coast.
type Region string

const (
	RegionNorth   Region = "North"
	RegionCentral Region = "Central"
	RegionSouth   Region = "South"
)

// FlagStatus is the lifeguard flag shown for a beach.
type FlagStatus string

const (
	FlagGreen  FlagStatus = "green"
	FlagYellow FlagStatus = "yellow"
	FlagRed    FlagStatus = "red"
)

// Valid reports whether f is one of the three flag colors.
func (f FlagStatus) Valid() bool {
	switch f {
	case FlagGreen, FlagYellow, FlagRed:
		return true
	}
	return false
}

// Severity orders flags so that red > yellow > green.
func (f FlagStatus) Severity() int {
	switch f {
	case FlagRed:
		return 2
	case FlagYellow:
		return 1
	default:
		return 0
	}
}

// HazardType tags an active hazard on a beach.
type HazardType string

const (
	HazardRipCurrents  HazardType = "rip-currents"
	HazardHighSurf     HazardType = "high-surf"
	HazardJellyfish    HazardType = "jellyfish"
	HazardSharks       HazardType = "sharks"
	HazardWaterQuality HazardType = "water-quality"
	HazardSneakerWaves HazardType = "sneaker-waves"
	HazardWildlife     HazardType = "wildlife"
	HazardStrongWinds  HazardType = "strong-winds"
)

// Valid reports whether h is a known hazard tag.
func (h HazardType) Valid() bool {
	switch h {
	case HazardRipCurrents, HazardHighSurf, HazardJellyfish, HazardSharks,
		HazardWaterQuality, HazardSneakerWaves, HazardWildlife, HazardStrongWinds:
		return true
	}
	return false
}

// TideStatus describes the current tide phase.
type TideStatus string

const (
	TideHigh    TideStatus = "High Tide"
	TideLow     TideStatus = "Low Tide"
	TideRising  TideStatus = "Rising"
	TideFalling TideStatus = "Falling"
	TideUnknown TideStatus = "Unknown"
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Conditions holds the merged ocean and weather values in imperial units.
type Conditions struct {
	WaveHeight    float64    `json:"waveHeight"`
	WindSpeed     float64    `json:"windSpeed"`
	WindDirection string     `json:"windDirection"`
	WaterTemp     float64    `json:"waterTemp"`
	AirTemp       float64    `json:"airTemp"`
	UVIndex       float64    `json:"uvIndex"`
	TideStatus    TideStatus `json:"tideStatus"`
}

// TideEvent is a predicted high or low water.
type TideEvent struct {
	Type   string    `json:"type"`
	Time   time.Time `json:"time"`
	Height float64   `json:"height"`
}

// TideSummary carries the tide station details behind TideStatus.
type TideSummary struct {
	StationID     string     `json:"stationId"`
	StationName   string     `json:"stationName"`
	CurrentHeight *float64   `json:"currentHeight,omitempty"`
	NextTide      *TideEvent `json:"nextTide,omitempty"`
}

// Beach is both the static reference record and the condition snapshot emitted
// by an aggregation cycle.
type Beach struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Nickname    string       `json:"nickname,omitempty"`
	Region      Region       `json:"region"`
	Coordinates Coordinates  `json:"coordinates"`
	FlagStatus  FlagStatus   `json:"flagStatus"`
	Conditions  Conditions   `json:"conditions"`
	Hazards     []HazardType `json:"hazards"`
	Advisory    string       `json:"advisory,omitempty"`
	LastUpdated time.Time    `json:"lastUpdated"`
	Tide        *TideSummary `json:"tide,omitempty"`
}

// Clone returns a deep copy of b.
func (b Beach) Clone() Beach {
	out := b
	out.Hazards = append([]HazardType(nil), b.Hazards...)
	if out.Hazards == nil {
		out.Hazards = []HazardType{}
	}
	if b.Tide != nil {
		tide := *b.Tide
		if b.Tide.CurrentHeight != nil {
			h := *b.Tide.CurrentHeight
			tide.CurrentHeight = &h
		}
		if b.Tide.NextTide != nil {
			next := *b.Tide.NextTide
			tide.NextTide = &next
		}
		out.Tide = &tide
	}
	return out
}

// CloneAll deep-copies a fleet.
func CloneAll(beaches []Beach) []Beach {
	out := make([]Beach, len(beaches))
	for i, b := range beaches {
		out[i] = b.Clone()
	}
	return out
}

// NormalizeHazards drops duplicates, keeping first-seen order.
func NormalizeHazards(hazards []HazardType) []HazardType {
	out := make([]HazardType, 0, len(hazards))
	seen := make(map[HazardType]struct{}, len(hazards))
	for _, h := range hazards {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
