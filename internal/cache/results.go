package cache

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/birdflu-tracker/internal/domain"
	"github.com/couchcryptid/birdflu-tracker/internal/observability"
)

// ResultCache stores pipeline results keyed by dataset fingerprint.
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) (*domain.Result, bool, error)
	Put(ctx context.Context, result *domain.Result) error
}

// Memory is an in-process ResultCache backed by an LRU.
type Memory struct {
	lru *LRU[*domain.Result]
}

// NewMemory creates an in-process cache for up to maxEntries results.
func NewMemory(maxEntries int) *Memory {
	return &Memory{lru: NewLRU[*domain.Result](maxEntries)}
}

func (m *Memory) Get(_ context.Context, fingerprint string) (*domain.Result, bool, error) {
	r, ok := m.lru.Get(fingerprint)
	return r, ok, nil
}

func (m *Memory) Put(_ context.Context, result *domain.Result) error {
	m.lru.Put(result.Fingerprint, result)
	return nil
}

// Tier is a named ResultCache inside a Tiered cache.
type Tier struct {
	Name  string
	Cache ResultCache
}

// Tiered checks each tier in order and backfills faster tiers on a hit in a
// slower one. Tier errors are logged and treated as misses.
type Tiered struct {
	tiers   []Tier
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTiered creates a cache over the given tiers, fastest first.
func NewTiered(logger *slog.Logger, metrics *observability.Metrics, tiers ...Tier) *Tiered {
	return &Tiered{tiers: tiers, logger: logger, metrics: metrics}
}

func (t *Tiered) Get(ctx context.Context, fingerprint string) (*domain.Result, bool, error) {
	for i, tier := range t.tiers {
		r, ok, err := tier.Cache.Get(ctx, fingerprint)
		if err != nil {
			t.logger.Warn("result cache lookup failed", "tier", tier.Name, "error", err)
			t.metrics.ResultCache.WithLabelValues(tier.Name, "error").Inc()
			continue
		}
		if !ok {
			t.metrics.ResultCache.WithLabelValues(tier.Name, "miss").Inc()
			continue
		}
		t.metrics.ResultCache.WithLabelValues(tier.Name, "hit").Inc()
		for _, faster := range t.tiers[:i] {
			if err := faster.Cache.Put(ctx, r); err != nil {
				t.logger.Warn("result cache backfill failed", "tier", faster.Name, "error", err)
			}
		}
		return r, true, nil
	}
	return nil, false, nil
}

func (t *Tiered) Put(ctx context.Context, result *domain.Result) error {
	for _, tier := range t.tiers {
		if err := tier.Cache.Put(ctx, result); err != nil {
			t.logger.Warn("result cache store failed", "tier", tier.Name, "error", err)
		}
	}
	return nil
}
