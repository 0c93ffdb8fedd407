package nws

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const alertsBody = `{
  "type": "FeatureCollection",
  "features": [
    {
      "id": "https://api.weather.gov/alerts/urn:oid:1",
      "properties": {
        "event": "High Surf Warning",
        "severity": "Severe",
        "certainty": "Likely",
        "urgency": "Expected",
        "headline": "High Surf Warning until 9 PM",
        "description": "Large breaking waves of 20 to 25 feet.",
        "areaDesc": "San Francisco Peninsula Coast",
        "onset": "2024-07-01T06:00:00-07:00",
        "expires": "2024-07-01T21:00:00-07:00"
      }
    },
    {
      "id": "https://api.weather.gov/alerts/urn:oid:2",
      "properties": {
        "event": "Heat Advisory",
        "severity": "Moderate",
        "headline": "",
        "onset": "not a time"
      }
    }
  ]
}`

func TestFetchAlerts(t *testing.T) {
	var path, agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		agent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(alertsBody))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, srv.Client(), discardLogger())
	alerts, err := client.FetchAlerts(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/alerts/active/zone/CAZ509", path)
	require.NotEmpty(t, agent)
	require.Len(t, alerts, 2)

	first := alerts[0]
	require.Equal(t, "High Surf Warning", first.Event)
	require.Equal(t, "Severe", first.Severity)
	require.Equal(t, "High Surf Warning until 9 PM", first.Headline)
	require.True(t, first.Expires.Equal(time.Date(2024, 7, 2, 4, 0, 0, 0, time.UTC)))

	require.True(t, alerts[1].Onset.IsZero())
}

func TestFetchAlertsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Zone: "CAZ006", UserAgent: "test"}, srv.Client(), discardLogger())
	alerts, err := client.FetchAlerts(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=503")
	require.Nil(t, alerts)
}
