package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type record struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

type failingBackend struct{}

func (failingBackend) Name() string { return "broken" }

func (failingBackend) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("read refused")
}

func (failingBackend) Save(context.Context, string, []byte) error {
	return errors.New("write refused")
}

func TestCollectionRoundTripBackends(t *testing.T) {
	backends := map[string]Backend{
		"file":   NewFileBackend(filepath.Join(t.TempDir(), "data")),
		"memory": NewMemoryBackend(),
	}
	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			col := NewCollection[record](backend, KeyCustomAlerts)

			items, err := col.List(ctx)
			require.NoError(t, err)
			require.NotNil(t, items)
			require.Empty(t, items)

			want := []record{{ID: "b", Count: 2}, {ID: "a", Count: 1}}
			require.NoError(t, col.ReplaceAll(ctx, want))

			got, err := col.List(ctx)
			require.NoError(t, err)
			require.Equal(t, want, got)

			require.NoError(t, col.ReplaceAll(ctx, nil))
			got, err = col.List(ctx)
			require.NoError(t, err)
			require.Empty(t, got)
		})
	}
}

func TestFileBackendWritesKeyedDocument(t *testing.T) {
	dir := t.TempDir()
	col := NewCollection[record](NewFileBackend(dir), KeyAdminUpdates)
	require.NoError(t, col.ReplaceAll(context.Background(), []record{{ID: "x"}}))

	raw, err := os.ReadFile(filepath.Join(dir, KeyAdminUpdates+".json"))
	require.NoError(t, err)
	require.Contains(t, string(raw), `"id": "x"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestCollectionSurfacesBackendErrors(t *testing.T) {
	col := NewCollection[record](failingBackend{}, KeyAdminUpdates)

	_, err := col.List(context.Background())
	require.ErrorContains(t, err, "read refused")

	err = col.ReplaceAll(context.Background(), []record{{ID: "x"}})
	require.ErrorContains(t, err, "write refused")
}

func TestCollectionRejectsCorruptDocument(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Save(context.Background(), KeyAnalyticsEvents, []byte("{not json")))

	_, err := NewCollection[record](backend, KeyAnalyticsEvents).List(context.Background())
	require.ErrorContains(t, err, "decode")
}

func TestObjectAndValkeyKeys(t *testing.T) {
	require.Equal(t, "account.r2.cloudflarestorage.com", sanitizeEndpoint("https://account.r2.cloudflarestorage.com/bucket"))
	require.Equal(t, "localhost:9000", sanitizeEndpoint("http://localhost:9000"))

	r2 := &R2Backend{prefix: "beachsafety"}
	require.Equal(t, "beachsafety/beach_custom_alerts.json", r2.objectKey(KeyCustomAlerts))
	require.Equal(t, "beach_custom_alerts.json", (&R2Backend{}).objectKey(KeyCustomAlerts))

	vk := &ValkeyBackend{prefix: "beachsafety"}
	require.Equal(t, "beachsafety:beach_admin_updates", vk.key(KeyAdminUpdates))
}
