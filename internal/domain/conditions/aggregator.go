package conditions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/yanqian/beachsafety/internal/domain/beach"
	"github.com/yanqian/beachsafety/pkg/metrics"
)

// AggregatorConfig tunes the fan-out.
type AggregatorConfig struct {
	// MaxConcurrency bounds how many beaches are fetched at once; 0 means
	// unbounded.
	MaxConcurrency int
}

// Aggregator merges every source into one snapshot per beach.
type Aggregator struct {
	cfg       AggregatorConfig
	sources   Sources
	overrides OverrideSource
	metrics   *metrics.Metrics
	clock     clockwork.Clock
	logger    *slog.Logger
}

// NewAggregator wires the aggregation engine.
func NewAggregator(cfg AggregatorConfig, sources Sources, overrides OverrideSource, m *metrics.Metrics, clock clockwork.Clock, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		cfg:       cfg,
		sources:   sources,
		overrides: overrides,
		metrics:   m,
		clock:     clock,
		logger:    logger.With("component", "conditions.aggregator"),
	}
}

// Aggregate runs one cycle over reference and returns a snapshot per beach in
// the same order. It never fails: when the cycle breaks, a copy of reference
// is returned instead. Source fetches are detached from ctx cancellation.
func (a *Aggregator) Aggregate(ctx context.Context, reference []beach.Beach) []beach.Beach {
	start := a.clock.Now()
	out, err := a.run(context.WithoutCancel(ctx), reference, start)
	a.metrics.AggregationDuration.Observe(a.clock.Since(start).Seconds())
	if err != nil {
		a.metrics.AggregationFallback.Inc()
		a.logger.Error("aggregation cycle failed, serving reference fleet", "error", err, "beaches", len(reference))
		return beach.CloneAll(reference)
	}
	a.metrics.BeachesAggregated.Set(float64(len(out)))
	a.logger.Info("aggregation cycle complete", "beaches", len(out), "elapsed_ms", a.clock.Since(start).Milliseconds())
	return out
}

func (a *Aggregator) run(ctx context.Context, reference []beach.Beach, now time.Time) (out []beach.Beach, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("aggregation panic: %v", r)
		}
	}()

	alerts, err := a.fetchAlerts(ctx)
	if err != nil {
		return nil, err
	}
	alertFlag := AlertFlag(alerts)
	overrides := a.latestOverrides(ctx)

	out = make([]beach.Beach, len(reference))
	g, gctx := errgroup.WithContext(ctx)
	if a.cfg.MaxConcurrency > 0 {
		g.SetLimit(a.cfg.MaxConcurrency)
	}
	for i, ref := range reference {
		i, ref := i, ref
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("beach %s: panic: %v", ref.ID, r)
				}
			}()
			readings, err := a.collect(gctx, ref)
			if err != nil {
				return err
			}
			o, hasOverride := overrides[ref.ID]
			out[i] = a.snapshot(ref, readings, alerts, alertFlag, o, hasOverride, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Aggregator) fetchAlerts(ctx context.Context) ([]HazardAlert, error) {
	if a.sources.Alerts == nil {
		return nil, nil
	}
	all, err := fetchOne(ctx, a, SourceAlerts, "", a.sources.Alerts.FetchAlerts)
	if err != nil {
		return nil, err
	}
	alerts := FilterBeachSafety(all)
	if len(alerts) > 0 {
		a.logger.Info("beach safety alerts active", "count", len(alerts), "first", alerts[0].Event)
	}
	return alerts, nil
}

func (a *Aggregator) latestOverrides(ctx context.Context) map[string]Override {
	if a.overrides == nil {
		return nil
	}
	latest, err := a.overrides.Latest(ctx)
	if err != nil {
		a.logger.Warn("override store unavailable, continuing without overrides", "error", err)
		return nil
	}
	return latest
}

// collect fans out to every configured source for one beach and waits for all
// of them. A failing source is absent, only a panic is an error.
func (a *Aggregator) collect(ctx context.Context, b beach.Beach) (Readings, error) {
	var r Readings
	g, gctx := errgroup.WithContext(ctx)
	if src := a.sources.Marine; src != nil {
		g.Go(func() (err error) {
			r.Marine, err = fetchOne(gctx, a, SourceMarine, b.ID, func(ctx context.Context) (*MarineReading, error) {
				return src.FetchMarine(ctx, b.Coordinates)
			})
			return err
		})
	}
	if src := a.sources.Weather; src != nil {
		g.Go(func() (err error) {
			r.Weather, err = fetchOne(gctx, a, SourceWeather, b.ID, func(ctx context.Context) (*WeatherReading, error) {
				return src.FetchWeather(ctx, b.Coordinates)
			})
			return err
		})
	}
	if src := a.sources.Buoy; src != nil {
		g.Go(func() (err error) {
			r.Buoy, err = fetchOne(gctx, a, SourceBuoy, b.ID, func(ctx context.Context) (*BuoyReading, error) {
				return src.FetchBuoy(ctx, b)
			})
			return err
		})
	}
	if src := a.sources.Tide; src != nil {
		g.Go(func() (err error) {
			r.Tide, err = fetchOne(gctx, a, SourceTide, b.ID, func(ctx context.Context) (*TideReading, error) {
				return src.FetchTide(ctx, b.Coordinates)
			})
			return err
		})
	}
	err := g.Wait()
	return r, err
}

// fetchOne calls a single source. Fetch errors become an absent (zero) result;
// a panic is returned as an error so the cycle falls back.
func fetchOne[T any](ctx context.Context, a *Aggregator, source, beachID string, fn func(context.Context) (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s source panic: %v", source, r)
		}
	}()
	start := a.clock.Now()
	v, fetchErr := fn(ctx)
	a.metrics.SourceDuration.WithLabelValues(source).Observe(a.clock.Since(start).Seconds())
	if fetchErr != nil {
		a.metrics.SourceFetches.WithLabelValues(source, "absent").Inc()
		a.logger.Warn("source unavailable", "source", source, "beach", beachID, "error", fetchErr)
		var zero T
		return zero, nil
	}
	a.metrics.SourceFetches.WithLabelValues(source, "ok").Inc()
	return v, nil
}

func (a *Aggregator) snapshot(ref beach.Beach, r Readings, alerts []HazardAlert, alertFlag beach.FlagStatus, o Override, hasOverride bool, now time.Time) beach.Beach {
	out := ref.Clone()
	merged, prov := MergeConditions(ref.Conditions, r)
	out.Conditions = merged
	if r.Tide != nil {
		out.Tide = tideSummary(r.Tide)
	}
	out.Hazards = DeriveHazards(ref.Hazards, merged, alerts)
	out.FlagStatus = Escalate(ref.FlagStatus, alertFlag)
	out.Advisory = Advisory(alerts, ref.Advisory)
	out.LastUpdated = now.UTC()
	if hasOverride {
		out = ApplyOverride(out, o)
	}
	a.logger.Debug("beach merged", "beach", ref.ID, "sources", r.Available(), "fields", prov, "override", hasOverride)
	return out
}
