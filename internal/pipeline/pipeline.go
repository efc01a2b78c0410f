// Package pipeline runs the load, normalize, join, and report stages and
// keeps the latest result for the presentation layer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/birdflu-tracker/internal/cache"
	"github.com/couchcryptid/birdflu-tracker/internal/dataset"
	"github.com/couchcryptid/birdflu-tracker/internal/domain"
	"github.com/couchcryptid/birdflu-tracker/internal/observability"
)

// Loader reads both datasets.
type Loader interface {
	Load(ctx context.Context) (*dataset.Datasets, error)
}

// Publisher receives every freshly computed result.
type Publisher interface {
	Publish(ctx context.Context, result *domain.Result) error
}

// Options holds the optional collaborators of a Pipeline. Nil fields are skipped.
type Options struct {
	Cache     cache.ResultCache
	Publisher Publisher
	Geocoder  domain.Geocoder
	Clock     clockwork.Clock
}

// Pipeline computes results on demand and remembers the last good one.
type Pipeline struct {
	loader     Loader
	normalizer *domain.Normalizer
	cache      cache.ResultCache
	publisher  Publisher
	geocoder   domain.Geocoder
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics

	runMu   sync.Mutex
	latest  atomic.Pointer[domain.Result]
	errMu   sync.RWMutex
	lastErr error
}

// New creates a Pipeline over the given loader.
func New(loader Loader, normalizer *domain.Normalizer, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		loader:     loader,
		normalizer: normalizer,
		cache:      opts.Cache,
		publisher:  opts.Publisher,
		geocoder:   opts.Geocoder,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// Latest returns the most recent successful result, or nil before the first one.
func (p *Pipeline) Latest() *domain.Result {
	return p.latest.Load()
}

// LastError returns the error of the most recent run, or nil if it succeeded.
func (p *Pipeline) LastError() error {
	p.errMu.RLock()
	defer p.errMu.RUnlock()
	return p.lastErr
}

// CheckReadiness returns nil once a result is available.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.Latest() != nil {
		return nil
	}
	if err := p.LastError(); err != nil {
		return fmt.Errorf("no result available: %w", err)
	}
	return errors.New("pipeline has not completed a run yet")
}

// Run loads the datasets and returns the result for them. A result already
// cached for the same dataset fingerprint is reused without recomputation.
// Concurrent calls are serialized.
func (p *Pipeline) Run(ctx context.Context) (*domain.Result, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := p.clock.Now()
	result, cached, err := p.run(ctx)
	p.metrics.RunDuration.Observe(p.clock.Since(start).Seconds())
	p.setLastError(err)

	if err != nil {
		p.metrics.PipelineRuns.WithLabelValues("error").Inc()
		p.logger.Error("pipeline run failed", "error", err)
		return nil, err
	}

	outcome := "computed"
	if cached {
		outcome = "cached"
	}
	p.metrics.PipelineRuns.WithLabelValues(outcome).Inc()
	p.metrics.LastSuccess.Set(float64(p.clock.Now().Unix()))
	p.recordGauges(result)
	p.latest.Store(result)

	p.logger.Info("pipeline run complete",
		"run_id", result.RunID,
		"outcome", outcome,
		"total_cases", result.Stats.TotalCases,
		"states_affected", result.Stats.StatesAffected,
		"counties_affected", result.Stats.CountiesAffected,
		"missing_counties", len(result.Missing),
		"duration", p.clock.Since(start),
	)
	return result, nil
}

// Refresh is Run under the name used by the HTTP surface.
func (p *Pipeline) Refresh(ctx context.Context) (*domain.Result, error) {
	return p.Run(ctx)
}

func (p *Pipeline) run(ctx context.Context) (*domain.Result, bool, error) {
	ds, err := p.loader.Load(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load datasets: %w", err)
	}

	if p.cache != nil {
		r, ok, err := p.cache.Get(ctx, ds.Fingerprint)
		if err != nil {
			p.logger.Warn("lookup cached result failed", "fingerprint", ds.Fingerprint, "error", err)
		}
		if ok {
			return r, true, nil
		}
	}

	result := domain.Analyze(p.normalizer, ds.Cases, ds.Centroids)
	result.RunID = uuid.NewString()
	result.Fingerprint = ds.Fingerprint

	if len(result.DuplicateKeys) > 0 {
		keys := make([]string, len(result.DuplicateKeys))
		for i, k := range result.DuplicateKeys {
			keys[i] = k.String()
		}
		p.logger.Warn("duplicate centroid keys, first row wins", "count", len(keys), "keys", keys)
	}

	if p.geocoder != nil && len(result.Missing) > 0 {
		result.Missing = domain.SuggestCentroids(ctx, result.Missing, p.geocoder, p.logger)
	}

	if p.cache != nil {
		if err := p.cache.Put(ctx, &result); err != nil {
			p.logger.Warn("store result failed", "error", err)
		}
	}

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, &result); err != nil {
			p.logger.Warn("publish result failed", "run_id", result.RunID, "error", err)
		}
	}
	return &result, false, nil
}

func (p *Pipeline) recordGauges(r *domain.Result) {
	unmatched := r.UnmatchedCases()
	p.metrics.CasesLoaded.Set(float64(len(r.Records)))
	p.metrics.CasesMatched.Set(float64(len(r.Records) - unmatched))
	p.metrics.CasesUnmatched.Set(float64(unmatched))
	p.metrics.DuplicateKeys.Set(float64(len(r.DuplicateKeys)))
	p.metrics.MissingCounties.Set(float64(len(r.Missing)))
}

func (p *Pipeline) setLastError(err error) {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	p.lastErr = err
}

// RunPeriodically re-runs the pipeline every interval until ctx is cancelled.
// After a failure the next attempt comes sooner, starting at one second and
// doubling up to the interval.
func (p *Pipeline) RunPeriodically(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	p.logger.Info("periodic refresh started", "interval", interval)

	retry := time.Second
	wait := interval
	for {
		if !p.sleep(ctx, wait) {
			p.logger.Info("periodic refresh stopping", "reason", ctx.Err())
			return
		}
		if _, err := p.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			wait = min(retry, interval)
			retry = nextBackoff(retry, interval)
			continue
		}
		retry = time.Second
		wait = interval
	}
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
