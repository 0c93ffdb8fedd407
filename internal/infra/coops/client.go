// Package coops reads tide predictions from NOAA CO-OPS.
package coops

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

	"github.com/jonboulle/clockwork"

	"github.com/yanqian/beachsafety/internal/domain/beach"
	"github.com/yanqian/beachsafety/internal/domain/conditions"
)

const (
	defaultBaseURL = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"
	predictionTime = "2006-01-02 15:04"
	maxPredictions = 8
	northLatitude  = 37.6
	southLatitude  = 37.4
)

// ErrNoPredictions means the station returned nothing usable.
var ErrNoPredictions = errors.New("no tide predictions")

// Station is a CO-OPS tide station.
type Station struct {
	ID   string
	Name string
}

// Tide stations serving the county coast.
var (
	StationSanFrancisco = Station{ID: "9414290", Name: "San Francisco"}
	StationPillarPoint  = Station{ID: "9414131", Name: "Pillar Point Harbor, Half Moon Bay"}
	StationMonterey     = Station{ID: "9413450", Name: "Monterey"}
)

// NearestStation picks a station by latitude band.
func NearestStation(lat float64) Station {
	switch {
	case lat > northLatitude:
		return StationSanFrancisco
	case lat < southLatitude:
		return StationMonterey
	default:
		return StationPillarPoint
	}
}

// Client fetches predictions and derives the current tide.
type Client struct {
	baseURL    string
	location   *time.Location
	httpClient *http.Client
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient builds a tide client. Prediction times are read in loc, which
// must match the station's local time.
func NewClient(baseURL string, loc *time.Location, httpClient *http.Client, clock clockwork.Clock, logger *slog.Logger) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if loc == nil {
		loc = time.UTC
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    base,
		location:   loc,
		httpClient: httpClient,
		clock:      clock,
		logger:     logger.With("component", "coops.client"),
	}
}

type predictionsResponse struct {
	Predictions []struct {
		T    string `json:"t"`
		V    string `json:"v"`
		Type string `json:"type"`
	} `json:"predictions"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// FetchTide returns the tide state at the station nearest at.
func (c *Client) FetchTide(ctx context.Context, at beach.Coordinates) (*conditions.TideReading, error) {
	station := NearestStation(at.Lat)
	now := c.clock.Now().In(c.location)
	predictions, err := c.FetchPredictions(ctx, station.ID, now, now.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("tide %s: %w", station.ID, err)
	}
	state := DeriveTideState(predictions, now)
	if len(predictions) > maxPredictions {
		predictions = predictions[:maxPredictions]
	}
	return &conditions.TideReading{
		StationID:       station.ID,
		StationName:     station.Name,
		Status:          state.Status,
		CurrentHeightFt: state.CurrentHeight,
		Next:            state.Next,
		Predictions:     predictions,
	}, nil
}

// FetchPredictions lists hi/lo predictions in feet above MLLW for the days
// spanning begin and end.
func (c *Client) FetchPredictions(ctx context.Context, stationID string, begin, end time.Time) ([]conditions.TidePrediction, error) {
	params := url.Values{}
	params.Set("product", "predictions")
	params.Set("application", "beachsafety")
	params.Set("begin_date", begin.Format("20060102"))
	params.Set("end_date", end.Format("20060102"))
	params.Set("datum", "MLLW")
	params.Set("station", stationID)
	params.Set("time_zone", "lst_ldt")
	params.Set("units", "english")
	params.Set("interval", "hilo")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("request error: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	var raw predictionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if raw.Error != nil {
		return nil, fmt.Errorf("api error: %s", raw.Error.Message)
	}

	out := make([]conditions.TidePrediction, 0, len(raw.Predictions))
	for _, p := range raw.Predictions {
		ts, err := time.ParseInLocation(predictionTime, p.T, c.location)
		if err != nil {
			c.logger.Debug("skipping tide prediction", "station", stationID, "time", p.T, "error", err)
			continue
		}
		height, err := strconv.ParseFloat(strings.TrimSpace(p.V), 64)
		if err != nil {
			c.logger.Debug("skipping tide prediction", "station", stationID, "value", p.V, "error", err)
			continue
		}
		kind := strings.ToUpper(strings.TrimSpace(p.Type))
		if kind != "H" && kind != "L" {
			continue
		}
		out = append(out, conditions.TidePrediction{Time: ts, HeightFt: height, Type: kind})
	}
	if len(out) == 0 {
		return nil, ErrNoPredictions
	}
	return out, nil
}

var _ conditions.TideSource = (*Client)(nil)
