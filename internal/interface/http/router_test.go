package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/beachsafety/internal/domain/alert"
	"github.com/yanqian/beachsafety/internal/domain/analytics"
	"github.com/yanqian/beachsafety/internal/domain/auth"
	"github.com/yanqian/beachsafety/internal/domain/beach"
	"github.com/yanqian/beachsafety/internal/domain/conditions"
	"github.com/yanqian/beachsafety/internal/domain/override"
	"github.com/yanqian/beachsafety/internal/infra/config"
	apperrors "github.com/yanqian/beachsafety/pkg/errors"
	"github.com/yanqian/beachsafety/pkg/metrics"
)

const testPassword = "tide-pool"

type testDeps struct {
	fleet        *stubFleet
	alerts       *stubAlertSource
	customAlerts *stubCustomAlerts
	overrides    *stubOverrides
	analytics    *stubAnalytics
	clock        *clockwork.FakeClock
}

func newTestDeps() *testDeps {
	return &testDeps{
		fleet: &stubFleet{fleet: &conditions.Fleet{
			Beaches: []beach.Beach{
				{ID: "linda-mar", Name: "Linda Mar", FlagStatus: beach.FlagGreen, Hazards: []beach.HazardType{}},
				{ID: "mavericks", Name: "Mavericks", FlagStatus: beach.FlagRed, Hazards: []beach.HazardType{beach.HazardHighSurf}},
			},
			GeneratedAt: time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
		}},
		alerts:       &stubAlertSource{},
		customAlerts: &stubCustomAlerts{},
		overrides:    &stubOverrides{},
		analytics:    &stubAnalytics{},
		clock:        clockwork.NewFakeClockAt(time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)),
	}
}

func newRouterUnderTest(t *testing.T, deps *testDeps) *http.Server {
	t.Helper()
	logger := newTestLogger()
	authSvc := auth.NewService(auth.Config{
		Password:   testPassword,
		Secret:     "test-secret",
		SessionTTL: time.Hour,
	}, deps.clock, logger)
	handler := NewHandler(
		SessionCookie{Name: "admin_session"},
		deps.fleet,
		deps.alerts,
		deps.customAlerts,
		deps.overrides,
		deps.analytics,
		authSvc,
		deps.clock,
		logger,
	)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			RequestTimeout: time.Second,
		},
	}
	return NewRouter(cfg, handler, metrics.NewForTesting(), prometheus.NewRegistry())
}

func TestRouter_ListBeaches(t *testing.T) {
	server := newRouterUnderTest(t, newTestDeps())

	rec := performRequest(server, http.MethodGet, "/api/beaches", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	require.NotEmpty(t, body["timestamp"])
	require.Len(t, body["data"], 2)
	require.Contains(t, body["sources"], "buoy")
}

func TestRouter_GetBeach(t *testing.T) {
	server := newRouterUnderTest(t, newTestDeps())

	rec := performRequest(server, http.MethodGet, "/api/beaches/mavericks", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	require.Equal(t, "red", data["flagStatus"])

	rec = performRequest(server, http.MethodGet, "/api/beaches/atlantis", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["success"])
	require.Equal(t, apperrors.CodeNotFound, body["code"])
	require.Equal(t, "beach not found", body["error"])
}

func TestRouter_HazardAlerts(t *testing.T) {
	deps := newTestDeps()
	deps.alerts.alerts = []conditions.HazardAlert{
		{ID: "1", Event: "Rip Current Statement", Severity: "Moderate"},
		{ID: "2", Event: "Heat Advisory", Severity: "Moderate"},
	}
	server := newRouterUnderTest(t, deps)

	rec := performRequest(server, http.MethodGet, "/api/alerts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, float64(1), body["count"])

	deps.alerts.err = errors.New("nws down")
	rec = performRequest(server, http.MethodGet, "/api/alerts", "", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, apperrors.CodeSourceError, decodeBody(t, rec)["code"])
}

func TestRouter_AdminRoutesRequireSession(t *testing.T) {
	server := newRouterUnderTest(t, newTestDeps())

	cases := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/admin/beach-update", ""},
		{http.MethodPost, "/api/admin/beach-update", `{"beachId":"mavericks"}`},
		{http.MethodDelete, "/api/admin/beach-update?beachId=mavericks", ""},
		{http.MethodPost, "/api/custom-alerts", `{"title":"x"}`},
		{http.MethodDelete, "/api/custom-alerts?id=alert-1", ""},
		{http.MethodGet, "/api/analytics/stats", ""},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := performRequest(server, tc.method, tc.path, tc.body, nil)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Equal(t, apperrors.CodeUnauthorized, decodeBody(t, rec)["code"])
		})
	}

	rec := performRequest(server, http.MethodGet, "/api/admin/beach-update", "", map[string]string{"Authorization": "Bearer not-a-token"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_LoginThenSaveOverride(t *testing.T) {
	deps := newTestDeps()
	deps.overrides.saveFn = func(_ context.Context, req override.SaveRequest) (override.Override, error) {
		require.Equal(t, "mavericks", req.BeachID)
		require.NotNil(t, req.FlagStatus)
		require.Equal(t, beach.FlagYellow, *req.FlagStatus)
		return override.Override{BeachID: req.BeachID, UpdatedBy: "County Staff"}, nil
	}
	server := newRouterUnderTest(t, deps)

	rec := performRequest(server, http.MethodPost, "/api/auth/login", `{"password":"wrong"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/auth/login", `{"password":"`+testPassword+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "admin_session", cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)

	payload := `{"beachId":"mavericks","flagStatus":"yellow"}`
	rec = performRequest(server, http.MethodPost, "/api/admin/beach-update", payload, map[string]string{"Cookie": cookies[0].Name + "=" + cookies[0].Value})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Beach update saved successfully", decodeBody(t, rec)["message"])

	token := decodeBody(t, performRequest(server, http.MethodPost, "/api/auth/login", `{"password":"`+testPassword+`"}`, nil))["data"].(map[string]any)["token"].(string)
	rec = performRequest(server, http.MethodPost, "/api/admin/beach-update", payload, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, rec.Code)

	deps.clock.Advance(2 * time.Hour)
	rec = performRequest(server, http.MethodPost, "/api/admin/beach-update", payload, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Logout(t *testing.T) {
	server := newRouterUnderTest(t, newTestDeps())

	rec := performRequest(server, http.MethodPost, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "", cookies[0].Value)
	require.Less(t, cookies[0].MaxAge, 0)
}

func TestRouter_OverrideErrors(t *testing.T) {
	deps := newTestDeps()
	deps.overrides.saveFn = func(context.Context, override.SaveRequest) (override.Override, error) {
		return override.Override{}, apperrors.Wrap(apperrors.CodeInvalidInput, "unknown beach", nil)
	}
	deps.overrides.resetFn = func(context.Context, string) (int, error) {
		return 0, apperrors.Wrap(apperrors.CodeStoreError, "failed to save overrides", errors.New("disk full"))
	}
	server := newRouterUnderTest(t, deps)
	headers := adminHeaders(t, server)

	rec := performRequest(server, http.MethodPost, "/api/admin/beach-update", `{"beachId":"atlantis"}`, headers)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "unknown beach", decodeBody(t, rec)["error"])

	rec = performRequest(server, http.MethodPost, "/api/admin/beach-update", `{"beachId":`, headers)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(server, http.MethodDelete, "/api/admin/beach-update", "", headers)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(server, http.MethodDelete, "/api/admin/beach-update?beachId=mavericks", "", headers)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, apperrors.CodeStoreError, decodeBody(t, rec)["code"])
}

func TestRouter_ResetOverride(t *testing.T) {
	deps := newTestDeps()
	deps.overrides.resetFn = func(_ context.Context, beachID string) (int, error) {
		require.Equal(t, "mavericks", beachID)
		return 2, nil
	}
	server := newRouterUnderTest(t, deps)

	rec := performRequest(server, http.MethodDelete, "/api/admin/beach-update?beachId=mavericks", "", adminHeaders(t, server))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, float64(2), body["removedCount"])
	require.Equal(t, "Reset mavericks to automatic data", body["message"])
}

func TestRouter_CustomAlerts(t *testing.T) {
	deps := newTestDeps()
	var gotFilter alert.Filter
	deps.customAlerts.activeFn = func(_ context.Context, f alert.Filter) ([]alert.Alert, error) {
		gotFilter = f
		return []alert.Alert{{ID: "alert-1", BeachID: alert.AllBeaches, Title: "Shark sighting"}}, nil
	}
	deps.customAlerts.deactivateFn = func(_ context.Context, id string) error {
		return apperrors.Wrap(apperrors.CodeNotFound, "alert not found", nil)
	}
	deps.customAlerts.createFn = func(_ context.Context, req alert.CreateRequest) (alert.Alert, error) {
		if req.Title == "" {
			return alert.Alert{}, apperrors.Wrap(apperrors.CodeInvalidInput, "title is required", nil)
		}
		return alert.Alert{ID: "alert-2", Title: req.Title}, nil
	}
	server := newRouterUnderTest(t, deps)
	headers := adminHeaders(t, server)

	rec := performRequest(server, http.MethodGet, "/api/custom-alerts?beachId=mavericks&language=es", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, alert.Filter{BeachID: "mavericks", Language: "es"}, gotFilter)
	require.Len(t, decodeBody(t, rec)["data"], 1)

	rec = performRequest(server, http.MethodPost, "/api/custom-alerts", `{"message":"no title"}`, headers)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/custom-alerts", `{"title":"Closed","message":"Sewage spill"}`, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodDelete, "/api/custom-alerts", "", headers)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(server, http.MethodDelete, "/api/custom-alerts?id=alert-9", "", headers)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Analytics(t *testing.T) {
	deps := newTestDeps()
	var gotDays int
	deps.analytics.statsFn = func(_ context.Context, days int) (analytics.Stats, error) {
		gotDays = days
		return analytics.Stats{TotalEvents: 3}, nil
	}
	server := newRouterUnderTest(t, deps)

	rec := performRequest(server, http.MethodPost, "/api/analytics/track", `{"type":"page_view"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "page_view", deps.analytics.tracked.Type)

	rec = performRequest(server, http.MethodGet, "/api/analytics/stats?days=45", "", adminHeaders(t, server))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 7, gotDays)

	rec = performRequest(server, http.MethodGet, "/api/analytics/stats?days=30", "", adminHeaders(t, server))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 30, gotDays)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	server := newRouterUnderTest(t, newTestDeps())

	rec := performRequest(server, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, newTestDeps())

	rec := performRequest(server, http.MethodOptions, "/api/custom-alerts", "", map[string]string{"Origin": "https://beaches.example"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func adminHeaders(t *testing.T, server *http.Server) map[string]string {
	t.Helper()
	rec := performRequest(server, http.MethodPost, "/api/auth/login", `{"password":"`+testPassword+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody(t, rec)["data"].(map[string]any)["token"].(string)
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(server *http.Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), strings.TrimSpace(rec.Body.String()))
	return body
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubFleet struct {
	fleet *conditions.Fleet
}

func (s *stubFleet) Get(context.Context) *conditions.Fleet {
	return s.fleet
}

func (s *stubFleet) Beach(_ context.Context, id string) (beach.Beach, bool) {
	for _, b := range s.fleet.Beaches {
		if b.ID == id {
			return b.Clone(), true
		}
	}
	return beach.Beach{}, false
}

type stubAlertSource struct {
	alerts []conditions.HazardAlert
	err    error
}

func (s *stubAlertSource) FetchAlerts(context.Context) ([]conditions.HazardAlert, error) {
	return s.alerts, s.err
}

type stubCustomAlerts struct {
	activeFn     func(context.Context, alert.Filter) ([]alert.Alert, error)
	createFn     func(context.Context, alert.CreateRequest) (alert.Alert, error)
	deactivateFn func(context.Context, string) error
}

func (s *stubCustomAlerts) Active(ctx context.Context, f alert.Filter) ([]alert.Alert, error) {
	if s.activeFn != nil {
		return s.activeFn(ctx, f)
	}
	return []alert.Alert{}, nil
}

func (s *stubCustomAlerts) Create(ctx context.Context, req alert.CreateRequest) (alert.Alert, error) {
	if s.createFn != nil {
		return s.createFn(ctx, req)
	}
	return alert.Alert{}, nil
}

func (s *stubCustomAlerts) Deactivate(ctx context.Context, id string) error {
	if s.deactivateFn != nil {
		return s.deactivateFn(ctx, id)
	}
	return nil
}

type stubOverrides struct {
	saveFn  func(context.Context, override.SaveRequest) (override.Override, error)
	resetFn func(context.Context, string) (int, error)
}

func (s *stubOverrides) List(context.Context) ([]override.Override, error) {
	return []override.Override{}, nil
}

func (s *stubOverrides) Save(ctx context.Context, req override.SaveRequest) (override.Override, error) {
	if s.saveFn != nil {
		return s.saveFn(ctx, req)
	}
	return override.Override{}, nil
}

func (s *stubOverrides) Reset(ctx context.Context, beachID string) (int, error) {
	if s.resetFn != nil {
		return s.resetFn(ctx, beachID)
	}
	return 0, nil
}

func (s *stubOverrides) Latest(context.Context) (map[string]conditions.Override, error) {
	return map[string]conditions.Override{}, nil
}

type stubAnalytics struct {
	tracked analytics.TrackRequest
	statsFn func(context.Context, int) (analytics.Stats, error)
}

func (s *stubAnalytics) Track(_ context.Context, req analytics.TrackRequest) (analytics.Event, error) {
	s.tracked = req
	return analytics.Event{Type: analytics.EventType(req.Type)}, nil
}

func (s *stubAnalytics) Stats(ctx context.Context, days int) (analytics.Stats, error) {
	if s.statsFn != nil {
		return s.statsFn(ctx, days)
	}
	return analytics.Stats{}, nil
}

var (
	_ FleetReader                  = (*stubFleet)(nil)
	_ conditions.HazardAlertSource = (*stubAlertSource)(nil)
	_ alert.Service                = (*stubCustomAlerts)(nil)
	_ override.Service             = (*stubOverrides)(nil)
	_ analytics.Service            = (*stubAnalytics)(nil)
	_ FleetReader                  = (*conditions.Cache)(nil)
)
