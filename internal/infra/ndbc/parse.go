package ndbc

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/beachsafety/internal/domain/conditions"
	"github.com/yanqian/beachsafety/pkg/units"
)

// ErrNoObservation means the file held no data rows.
var ErrNoObservation = errors.New("no observation rows")

// Column offsets used when the file has no recognisable header.
var defaultColumns = map[string]int{
	"YY": 0, "MM": 1, "DD": 2, "hh": 3, "mm": 4,
	"WDIR": 5, "WSPD": 6, "WVHT": 8, "ATMP": 13, "WTMP": 14,
}

var sentinels = map[float64]bool{99: true, 999: true, 9999: true}

// Observation is one metric data row. Nil fields were missing.
type Observation struct {
	ObservedAt   time.Time
	WindDirDeg   *float64
	WindSpeedMPS *float64
	WaveHeightM  *float64
	AirTempC     *float64
	WaterTempC   *float64
}

// Parse reads a realtime2 standard meteorological file and returns the most
// recent (first) data row.
func Parse(text string) (Observation, error) {
	columns := defaultColumns
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if header := headerColumns(line); header != nil {
				columns = header
			}
			continue
		}
		return parseRow(strings.Fields(line), columns), nil
	}
	return Observation{}, ErrNoObservation
}

func headerColumns(line string) map[string]int {
	fields := strings.Fields(strings.TrimPrefix(line, "#"))
	cols := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := cols[f]; !dup {
			cols[f] = i
		}
	}
	if _, ok := cols["WDIR"]; !ok {
		return nil
	}
	return cols
}

func parseRow(fields []string, columns map[string]int) Observation {
	get := func(name string) *float64 {
		idx, ok := columns[name]
		if !ok || idx >= len(fields) {
			return nil
		}
		raw := fields[idx]
		if raw == "MM" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !units.Finite(v) || sentinels[v] {
			return nil
		}
		return &v
	}
	return Observation{
		ObservedAt:   observedAt(fields, columns),
		WindDirDeg:   get("WDIR"),
		WindSpeedMPS: get("WSPD"),
		WaveHeightM:  get("WVHT"),
		AirTempC:     get("ATMP"),
		WaterTempC:   get("WTMP"),
	}
}

func observedAt(fields []string, columns map[string]int) time.Time {
	var parts [5]int
	for i, name := range []string{"YY", "MM", "DD", "hh", "mm"} {
		idx, ok := columns[name]
		if !ok || idx >= len(fields) {
			return time.Time{}
		}
		v, err := strconv.Atoi(fields[idx])
		if err != nil {
			return time.Time{}
		}
		parts[i] = v
	}
	year := parts[0]
	if year < 100 {
		year += 2000
	}
	return time.Date(year, time.Month(parts[1]), parts[2], parts[3], parts[4], 0, 0, time.UTC)
}

// Reading converts the observation to imperial units.
func (o Observation) Reading(station string) *conditions.BuoyReading {
	reading := &conditions.BuoyReading{
		Station:      station,
		ObservedAt:   o.ObservedAt,
		WaveHeightFt: convert(o.WaveHeightM, units.MetersToFeet),
		WindSpeedMph: convert(o.WindSpeedMPS, units.MPSToMPH),
		WaterTempF:   convert(o.WaterTempC, units.CelsiusToFahrenheit),
		AirTempF:     convert(o.AirTempC, units.CelsiusToFahrenheit),
	}
	if o.WindDirDeg != nil {
		dir := units.DegreesToCardinal(*o.WindDirDeg)
		reading.WindDirection = &dir
	}
	return reading
}

func convert(v *float64, fn func(float64) float64) *float64 {
	if v == nil {
		return nil
	}
	out := fn(*v)
	return &out
}
