// Package ndbc reads NOAA National Data Buoy Center realtime observations.
package ndbc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/beachsafety/internal/domain/beach"
	"github.com/yanqian/beachsafety/internal/domain/conditions"
)

const defaultBaseURL = "https://www.ndbc.noaa.gov/data/realtime2"

// Buoy stations off the county coast.
const (
	StationSanFrancisco = "46026"
	StationHalfMoonBay  = "46012"
	StationMonterey     = "46042"
)

const (
	northLatitude = 37.5
	southLatitude = 37.25
)

// Client fetches the latest buoy observation for a beach.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a buoy client. A nil httpClient gets a 10s timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		logger:     logger.With("component", "ndbc.client"),
	}
}

// SelectStations picks the primary and fallback buoy for a beach by region
// and latitude.
func SelectStations(b beach.Beach) (primary, fallback string) {
	switch {
	case b.Region == beach.RegionNorth || b.Coordinates.Lat > northLatitude:
		return StationSanFrancisco, StationHalfMoonBay
	case b.Region == beach.RegionSouth || b.Coordinates.Lat < southLatitude:
		return StationMonterey, StationHalfMoonBay
	default:
		return StationHalfMoonBay, StationSanFrancisco
	}
}

// FetchBuoy tries the primary station, then the fallback.
func (c *Client) FetchBuoy(ctx context.Context, b beach.Beach) (*conditions.BuoyReading, error) {
	primary, fallback := SelectStations(b)
	reading, err := c.FetchStation(ctx, primary)
	if err == nil {
		return reading, nil
	}
	c.logger.Warn("buoy unavailable, using fallback", "beach", b.ID, "station", primary, "fallback", fallback, "error", err)
	reading, fallbackErr := c.FetchStation(ctx, fallback)
	if fallbackErr != nil {
		return nil, errors.Join(err, fallbackErr)
	}
	return reading, nil
}

// FetchStation downloads and parses one station's realtime file.
func (c *Client) FetchStation(ctx context.Context, station string) (*conditions.BuoyReading, error) {
	endpoint := fmt.Sprintf("%s/%s.txt", c.baseURL, station)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("buoy %s: build request: %w", station, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("buoy %s: request failed: %w", station, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("buoy %s: request error: status=%d", station, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("buoy %s: read response: %w", station, err)
	}
	obs, err := Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("buoy %s: %w", station, err)
	}
	return obs.Reading(station), nil
}
