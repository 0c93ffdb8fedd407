// Package nws reads active weather alerts from the National Weather Service.
package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/beachsafety/internal/domain/conditions"
)

const (
	defaultBaseURL   = "https://api.weather.gov"
	defaultZone      = "CAZ509"
	defaultUserAgent = "(Beach Safety Dashboard, contact@beachsafety.local)"
)

// Config selects the forecast zone and identifies the caller. NWS rejects
// requests without a User-Agent.
type Config struct {
	BaseURL   string
	Zone      string
	UserAgent string
}

// Client lists active alerts for one forecast zone.
type Client struct {
	baseURL    string
	zone       string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds an alerts client.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(orDefault(cfg.BaseURL, defaultBaseURL), "/"),
		zone:       orDefault(cfg.Zone, defaultZone),
		userAgent:  orDefault(cfg.UserAgent, defaultUserAgent),
		httpClient: httpClient,
		logger:     logger.With("component", "nws.client"),
	}
}

type alertsResponse struct {
	Features []struct {
		ID         string `json:"id"`
		Properties struct {
			Event       string `json:"event"`
			Severity    string `json:"severity"`
			Certainty   string `json:"certainty"`
			Urgency     string `json:"urgency"`
			Headline    string `json:"headline"`
			Description string `json:"description"`
			Instruction string `json:"instruction"`
			AreaDesc    string `json:"areaDesc"`
			Onset       string `json:"onset"`
			Expires     string `json:"expires"`
		} `json:"properties"`
	} `json:"features"`
}

// FetchAlerts returns every active alert in the zone, unfiltered.
func (c *Client) FetchAlerts(ctx context.Context) ([]conditions.HazardAlert, error) {
	endpoint := fmt.Sprintf("%s/alerts/active/zone/%s", c.baseURL, c.zone)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("request error: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var raw alertsResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	alerts := make([]conditions.HazardAlert, 0, len(raw.Features))
	for _, f := range raw.Features {
		p := f.Properties
		alerts = append(alerts, conditions.HazardAlert{
			ID:          f.ID,
			Event:       p.Event,
			Severity:    p.Severity,
			Certainty:   p.Certainty,
			Urgency:     p.Urgency,
			Headline:    p.Headline,
			Description: p.Description,
			Instruction: p.Instruction,
			AreaDesc:    p.AreaDesc,
			Onset:       c.parseTime(f.ID, p.Onset),
			Expires:     c.parseTime(f.ID, p.Expires),
		})
	}
	c.logger.Debug("fetched alerts", "zone", c.zone, "count", len(alerts))
	return alerts, nil
}

func (c *Client) parseTime(id, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		c.logger.Debug("unparsable alert time", "alert", id, "value", value, "error", err)
		return time.Time{}
	}
	return ts
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

var _ conditions.HazardAlertSource = (*Client)(nil)
