package conditions

import (
	"github.com/yanqian/beachsafety/internal/domain/beach"
	"github.com/yanqian/beachsafety/pkg/units"
)

// numberLink is one step in a numeric priority chain.
type numberLink struct {
	source  string
	extract func(Readings) *float64
}

// textLink is one step in a text priority chain.
type textLink struct {
	source  string
	extract func(Readings) *string
}

type numberField struct {
	name   string
	places int
	chain  []numberLink
	set    func(*beach.Conditions, float64)
}

type textField struct {
	name  string
	chain []textLink
	set   func(*beach.Conditions, string)
}

// Field priority tables. The first present value in a chain wins; when every
// link is absent the reference value is kept unchanged.
var (
	numberFields = []numberField{
		{
			name:   "waveHeight",
			places: 1,
			chain: []numberLink{
				{SourceMarine, func(r Readings) *float64 {
					if r.Marine == nil {
						return nil
					}
					return r.Marine.WaveHeightFt
				}},
				{SourceBuoy, func(r Readings) *float64 {
					if r.Buoy == nil {
						return nil
					}
					return r.Buoy.WaveHeightFt
				}},
			},
			set: func(c *beach.Conditions, v float64) { c.WaveHeight = v },
		},
		{
			name: "windSpeed",
			chain: []numberLink{
				{SourceWeather, func(r Readings) *float64 {
					if r.Weather == nil {
						return nil
					}
					return r.Weather.WindSpeedMph
				}},
				{SourceBuoy, func(r Readings) *float64 {
					if r.Buoy == nil {
						return nil
					}
					return r.Buoy.WindSpeedMph
				}},
			},
			set: func(c *beach.Conditions, v float64) { c.WindSpeed = v },
		},
		{
			name: "waterTemp",
			chain: []numberLink{
				{SourceBuoy, func(r Readings) *float64 {
					if r.Buoy == nil {
						return nil
					}
					return r.Buoy.WaterTempF
				}},
			},
			set: func(c *beach.Conditions, v float64) { c.WaterTemp = v },
		},
		{
			name: "airTemp",
			chain: []numberLink{
				{SourceWeather, func(r Readings) *float64 {
					if r.Weather == nil {
						return nil
					}
					return r.Weather.AirTempF
				}},
			},
			set: func(c *beach.Conditions, v float64) { c.AirTemp = v },
		},
		{
			name: "uvIndex",
			chain: []numberLink{
				{SourceWeather, func(r Readings) *float64 {
					if r.Weather == nil {
						return nil
					}
					return r.Weather.UVIndex
				}},
			},
			set: func(c *beach.Conditions, v float64) { c.UVIndex = v },
		},
	}

	textFields = []textField{
		{
			name: "windDirection",
			chain: []textLink{
				{SourceWeather, func(r Readings) *string {
					if r.Weather == nil {
						return nil
					}
					return r.Weather.WindDirection
				}},
				{SourceBuoy, func(r Readings) *string {
					if r.Buoy == nil {
						return nil
					}
					return r.Buoy.WindDirection
				}},
			},
			set: func(c *beach.Conditions, v string) { c.WindDirection = v },
		},
		{
			name: "tideStatus",
			chain: []textLink{
				{SourceTide, func(r Readings) *string {
					if r.Tide == nil || r.Tide.Status == "" {
						return nil
					}
					s := string(r.Tide.Status)
					return &s
				}},
			},
			set: func(c *beach.Conditions, v string) { c.TideStatus = beach.TideStatus(v) },
		},
	}
)

// Provenance records which source supplied each merged field. Fields kept from
// the reference record are absent.
type Provenance map[string]string

// MergeConditions applies the field priority tables to ref.
func MergeConditions(ref beach.Conditions, r Readings) (beach.Conditions, Provenance) {
	out := ref
	prov := make(Provenance, len(numberFields)+len(textFields))
	for _, f := range numberFields {
		for _, link := range f.chain {
			v := link.extract(r)
			if v == nil || !units.Finite(*v) {
				continue
			}
			f.set(&out, units.Round(*v, f.places))
			prov[f.name] = link.source
			break
		}
	}
	for _, f := range textFields {
		for _, link := range f.chain {
			v := link.extract(r)
			if v == nil || *v == "" {
				continue
			}
			f.set(&out, *v)
			prov[f.name] = link.source
			break
		}
	}
	return out, prov
}

// tideSummary converts a tide reading into the record attached to a snapshot.
func tideSummary(t *TideReading) *beach.TideSummary {
	if t == nil {
		return nil
	}
	summary := &beach.TideSummary{
		StationID:   t.StationID,
		StationName: t.StationName,
	}
	if t.CurrentHeightFt != nil {
		h := *t.CurrentHeightFt
		summary.CurrentHeight = &h
	}
	if t.Next != nil {
		summary.NextTide = &beach.TideEvent{
			Type:   t.Next.Type,
			Time:   t.Next.Time,
			Height: t.Next.HeightFt,
		}
	}
	return summary
}
