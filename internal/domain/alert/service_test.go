package alert

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/beachsafety/internal/infra/store"
	apperrors "github.com/yanqian/beachsafety/pkg/errors"
)

type stubCatalog map[string]bool

func (c stubCatalog) Has(id string) bool { return c[id] }

type countingInvalidator struct{ calls int }

func (i *countingInvalidator) Invalidate() { i.calls++ }

func newTestService() (Service, *clockwork.FakeClock, *countingInvalidator) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC))
	inv := &countingInvalidator{}
	repo := store.NewCollection[Alert](store.NewMemoryBackend(), store.KeyCustomAlerts)
	svc := NewService(repo, stubCatalog{"linda-mar": true, "mavericks": true}, inv, clock, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, clock, inv
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, clock, inv := newTestService()

	created, err := svc.Create(context.Background(), CreateRequest{Title: "Shark sighting", Message: "Stay out of the water"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(created.ID, "alert-"))
	require.Equal(t, AllBeaches, created.BeachID)
	require.Equal(t, PriorityMedium, created.Priority)
	require.Equal(t, LanguageBoth, created.Language)
	require.Equal(t, "County Staff", created.CreatedBy)
	require.Equal(t, clock.Now().Add(24*time.Hour), created.ExpiresAt)
	require.True(t, created.IsActive)
	require.Equal(t, 1, inv.calls)
}

func TestCreateThenDeactivateRoundTrip(t *testing.T) {
	svc, _, inv := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{BeachID: "mavericks", Title: "Closure", Message: "Cliff work", Priority: "high"})
	require.NoError(t, err)

	active, err := svc.Active(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, created.ID, active[0].ID)

	require.NoError(t, svc.Deactivate(ctx, created.ID))
	active, err = svc.Active(ctx, Filter{})
	require.NoError(t, err)
	require.Empty(t, active)
	require.Equal(t, 2, inv.calls)

	err = svc.Deactivate(ctx, "alert-missing")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestActiveExcludesExpired(t *testing.T) {
	svc, clock, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{Title: "Short", Message: "one hour", ExpiresAt: clock.Now().Add(time.Hour).Format(time.RFC3339)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateRequest{Title: "Long", Message: "default day"})
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	active, err := svc.Active(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "Long", active[0].Title)
}

func TestActiveFilters(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	for _, req := range []CreateRequest{
		{Title: "County", Message: "m"},
		{Title: "Linda EN", Message: "m", BeachID: "linda-mar", Language: "en"},
		{Title: "Mavericks ES", Message: "m", BeachID: "mavericks", Language: "es"},
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	titles := func(filter Filter) []string {
		active, err := svc.Active(ctx, filter)
		require.NoError(t, err)
		out := make([]string, 0, len(active))
		for _, a := range active {
			out = append(out, a.Title)
		}
		return out
	}

	require.Equal(t, []string{"County", "Linda EN"}, titles(Filter{BeachID: "linda-mar"}))
	require.Equal(t, []string{"County", "Mavericks ES"}, titles(Filter{Language: "es"}))
	require.Equal(t, []string{"County"}, titles(Filter{BeachID: "mavericks", Language: "en"}))
	require.Len(t, titles(Filter{}), 3)
}

func TestCreateValidation(t *testing.T) {
	svc, clock, inv := newTestService()
	cases := map[string]CreateRequest{
		"missing title":   {Message: "m"},
		"missing message": {Title: "t"},
		"bad priority":    {Title: "t", Message: "m", Priority: "urgent"},
		"bad language":    {Title: "t", Message: "m", Language: "fr"},
		"unknown beach":   {Title: "t", Message: "m", BeachID: "atlantis"},
		"bad expiry":      {Title: "t", Message: "m", ExpiresAt: "tomorrow"},
		"past expiry":     {Title: "t", Message: "m", ExpiresAt: clock.Now().Add(-time.Hour).Format(time.RFC3339)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), req)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput), err)
		})
	}
	require.Zero(t, inv.calls)

	err := svc.Deactivate(context.Background(), " ")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}
