// Package openmeteo adapts the Open-Meteo forecast and marine APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/beachsafety/internal/domain/beach"
	"github.com/yanqian/beachsafety/internal/domain/conditions"
	"github.com/yanqian/beachsafety/pkg/units"
)

const (
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	defaultMarineURL   = "https://marine-api.open-meteo.com/v1/marine"
	defaultTimezone    = "America/Los_Angeles"
)

var errNoValues = errors.New("response carried no current values")

// Config points the client at the two APIs.
type Config struct {
	ForecastURL string
	MarineURL   string
	Timezone    string
}

// Client fetches current weather and marine conditions for a coordinate.
type Client struct {
	forecastURL string
	marineURL   string
	timezone    string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient builds an API client. A nil httpClient gets a 10s timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		forecastURL: orDefault(cfg.ForecastURL, defaultForecastURL),
		marineURL:   orDefault(cfg.MarineURL, defaultMarineURL),
		timezone:    orDefault(cfg.Timezone, defaultTimezone),
		httpClient:  httpClient,
		logger:      logger.With("component", "openmeteo.client"),
	}
}

type marineResponse struct {
	Current *struct {
		WaveHeight            *float64 `json:"wave_height"`
		WaveDirection         *float64 `json:"wave_direction"`
		WavePeriod            *float64 `json:"wave_period"`
		OceanCurrentVelocity  *float64 `json:"ocean_current_velocity"`
		OceanCurrentDirection *float64 `json:"ocean_current_direction"`
		SwellWaveHeight       *float64 `json:"swell_wave_height"`
	} `json:"current"`
}

type forecastResponse struct {
	Current *struct {
		Temperature2m    *float64 `json:"temperature_2m"`
		UVIndex          *float64 `json:"uv_index"`
		WindSpeed10m     *float64 `json:"wind_speed_10m"`
		WindDirection10m *float64 `json:"wind_direction_10m"`
	} `json:"current"`
}

// FetchMarine returns wave height and swell in feet, plus the surface ocean
// current.
func (c *Client) FetchMarine(ctx context.Context, at beach.Coordinates) (*conditions.MarineReading, error) {
	params := c.baseParams(at)
	params.Set("current", "wave_height,wave_direction,wave_period,ocean_current_velocity,ocean_current_direction,swell_wave_height")

	var raw marineResponse
	if err := c.getJSON(ctx, c.marineURL, params, &raw); err != nil {
		return nil, fmt.Errorf("marine: %w", err)
	}
	if raw.Current == nil {
		return nil, fmt.Errorf("marine: %w", errNoValues)
	}
	cur := raw.Current
	reading := &conditions.MarineReading{
		WaveHeightFt:    convert(cur.WaveHeight, units.MetersToFeet),
		WavePeriodS:     convert(cur.WavePeriod, nil),
		SwellHeightFt:   convert(cur.SwellWaveHeight, units.MetersToFeet),
		CurrentSpeedMph: convert(cur.OceanCurrentVelocity, units.MPSToMPH),
	}
	if cur.WaveDirection != nil && units.Finite(*cur.WaveDirection) {
		dir := units.DegreesToCardinal(*cur.WaveDirection)
		reading.WaveDirection = &dir
	}
	if cur.OceanCurrentDirection != nil && units.Finite(*cur.OceanCurrentDirection) {
		dir := units.DegreesToCardinal(*cur.OceanCurrentDirection)
		reading.CurrentDirection = &dir
	}
	if reading.WaveHeightFt == nil && reading.SwellHeightFt == nil && reading.WavePeriodS == nil {
		return nil, fmt.Errorf("marine: %w", errNoValues)
	}
	return reading, nil
}

// FetchWeather returns air temperature in °F, wind in mph and UV index.
func (c *Client) FetchWeather(ctx context.Context, at beach.Coordinates) (*conditions.WeatherReading, error) {
	params := c.baseParams(at)
	params.Set("current", "temperature_2m,uv_index,wind_speed_10m,wind_direction_10m")
	params.Set("wind_speed_unit", "ms")
	params.Set("temperature_unit", "celsius")

	var raw forecastResponse
	if err := c.getJSON(ctx, c.forecastURL, params, &raw); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	if raw.Current == nil {
		return nil, fmt.Errorf("forecast: %w", errNoValues)
	}
	cur := raw.Current
	reading := &conditions.WeatherReading{
		AirTempF:     convert(cur.Temperature2m, units.CelsiusToFahrenheit),
		UVIndex:      convert(cur.UVIndex, nil),
		WindSpeedMph: convert(cur.WindSpeed10m, units.MPSToMPH),
	}
	if cur.WindDirection10m != nil && units.Finite(*cur.WindDirection10m) {
		dir := units.DegreesToCardinal(*cur.WindDirection10m)
		reading.WindDirection = &dir
	}
	return reading, nil
}

func (c *Client) baseParams(at beach.Coordinates) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(at.Lat, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(at.Lng, 'f', 4, 64))
	params.Set("timezone", c.timezone)
	return params
}

func (c *Client) getJSON(ctx context.Context, base string, params url.Values, out any) error {
	endpoint := base + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("request error: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// convert applies fn to a present, finite value.
func convert(v *float64, fn func(float64) float64) *float64 {
	if v == nil || !units.Finite(*v) {
		return nil
	}
	out := *v
	if fn != nil {
		out = fn(out)
	}
	return &out
}

func orDefault(v, fallback string) string {
	if s := strings.TrimRight(strings.TrimSpace(v), "/"); s != "" {
		return s
	}
	return fallback
}

var (
	_ conditions.MarineSource  = (*Client)(nil)
	_ conditions.WeatherSource = (*Client)(nil)
)
