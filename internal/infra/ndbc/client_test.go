package ndbc

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/beachsafety/internal/domain/beach"
)

const sample = `#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD   PRES  ATMP  WTMP  DEWP  VIS PTDY  TIDE
#yr  mo dy hr mn degT m/s  m/s     m   sec   sec degT   hPa  degC  degC  degC  nmi  hPa    ft
2024 07 01 18 50 300  8.0 10.0   2.1    12   8.3 290 1015.2  14.5  13.0  11.9   MM -0.4    MM
2024 07 01 18 40 310  7.0  9.0    MM    MM    MM  MM 1015.3  14.4  13.1  11.8   MM   MM    MM
`

func TestParseUsesHeaderColumns(t *testing.T) {
	obs, err := Parse(sample)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 7, 1, 18, 50, 0, 0, time.UTC), obs.ObservedAt)
	require.Equal(t, 300.0, *obs.WindDirDeg)
	require.Equal(t, 8.0, *obs.WindSpeedMPS)
	require.Equal(t, 2.1, *obs.WaveHeightM)
	require.Equal(t, 14.5, *obs.AirTempC)
	require.Equal(t, 13.0, *obs.WaterTempC)

	reading := obs.Reading(StationHalfMoonBay)
	require.InDelta(t, 6.89, *reading.WaveHeightFt, 0.01)
	require.InDelta(t, 55.4, *reading.WaterTempF, 0.01)
	require.Equal(t, "NW", *reading.WindDirection)
}

func TestParseMissingValues(t *testing.T) {
	text := `#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD   PRES  ATMP  WTMP
24 07 01 18 50 999 99.0 MM MM 12 8.3 290 1015.2 abc 999.0
`
	obs, err := Parse(text)
	require.NoError(t, err)
	require.Nil(t, obs.WindDirDeg)
	require.Nil(t, obs.WindSpeedMPS)
	require.Nil(t, obs.WaveHeightM)
	require.Nil(t, obs.AirTempC)
	require.Nil(t, obs.WaterTempC)
	require.Equal(t, 2024, obs.ObservedAt.Year())

	reading := obs.Reading("x")
	require.Nil(t, reading.WindDirection)
	require.Nil(t, reading.WaveHeightFt)
}

func TestParseFallsBackToKnownOffsets(t *testing.T) {
	obs, err := Parse("24 07 01 18 50 180 5.0 6.0 1.5 10 7 200 1010 12.0 11.0\n")
	require.NoError(t, err)
	require.Equal(t, 180.0, *obs.WindDirDeg)
	require.Equal(t, 1.5, *obs.WaveHeightM)
	require.Equal(t, 11.0, *obs.WaterTempC)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse("#YY MM DD hh mm WDIR\n#yr mo dy hr mn degT\n")
	require.ErrorIs(t, err, ErrNoObservation)
}

func TestSelectStations(t *testing.T) {
	cases := []struct {
		name     string
		b        beach.Beach
		primary  string
		fallback string
	}{
		{"north region", beach.Beach{Region: beach.RegionNorth, Coordinates: beach.Coordinates{Lat: 37.4}}, StationSanFrancisco, StationHalfMoonBay},
		{"north by latitude", beach.Beach{Region: beach.RegionCentral, Coordinates: beach.Coordinates{Lat: 37.55}}, StationSanFrancisco, StationHalfMoonBay},
		{"south region", beach.Beach{Region: beach.RegionSouth, Coordinates: beach.Coordinates{Lat: 37.3}}, StationMonterey, StationHalfMoonBay},
		{"south by latitude", beach.Beach{Region: beach.RegionCentral, Coordinates: beach.Coordinates{Lat: 37.1}}, StationMonterey, StationHalfMoonBay},
		{"central", beach.Beach{Region: beach.RegionCentral, Coordinates: beach.Coordinates{Lat: 37.4}}, StationHalfMoonBay, StationSanFrancisco},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			primary, fallback := SelectStations(tc.b)
			require.Equal(t, tc.primary, primary)
			require.Equal(t, tc.fallback, fallback)
		})
	}
}

func TestFetchBuoyFallsBack(t *testing.T) {
	var (
		mu        sync.Mutex
		requested []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.Path)
		mu.Unlock()
		if r.URL.Path == "/"+StationHalfMoonBay+".txt" {
			http.Error(w, "offline", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()
	client := NewClient(srv.URL, srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	central := beach.Beach{ID: "mavericks", Region: beach.RegionCentral, Coordinates: beach.Coordinates{Lat: 37.49}}
	reading, err := client.FetchBuoy(context.Background(), central)
	require.NoError(t, err)
	require.Equal(t, StationSanFrancisco, reading.Station)
	require.Equal(t, []string{"/46012.txt", "/46026.txt"}, requested)
}

func TestFetchBuoyBothFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	client := NewClient(srv.URL, srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.FetchBuoy(context.Background(), beach.Beach{Region: beach.RegionSouth})
	require.ErrorContains(t, err, "46042")
	require.ErrorContains(t, err, "46012")
}
