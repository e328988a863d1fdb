// Package storecache fronts a rate-limited backing store with a
// throttle-aware read-through cache. It serves recently fetched container
// and key listings without touching the store, recognizes responses the
// store silently replaced with throttle placeholders, and recovers real
// data through a bounded candidate-key probe when an explicit refresh is
// itself throttled.
package storecache

import (
	"context"
	"errors"
	"fmt"

	"github.com/illmade-knight/go-storecache/pkg/cache"
	"github.com/illmade-knight/go-storecache/pkg/limiter"
	"github.com/illmade-knight/go-storecache/pkg/store"
	"github.com/illmade-knight/go-storecache/pkg/throttle"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// containersKey is the single slot the container-name listing occupies in
// its cache.
const containersKey = "containers"

// ValueKey identifies a single key within a container for value caching
// and rate limiting.
type ValueKey struct {
	Ref store.ContainerRef
	Key string
}

// String returns a stable "name/scope/key" form used as the limiter
// target and Redis key suffix.
func (k ValueKey) String() string {
	return k.Ref.String() + "/" + k.Key
}

// Service is the façade the presentation layer talks to. It owns the
// caches, the rate limiter, and the refresh coordination; the caller owns
// the store client's lifecycle.
//
// There are no ambient singletons: construct one Service at startup and
// pass it to whatever composes the presentation layer.
type Service struct {
	cfg      Config
	client   store.Client
	detector *throttle.Detector
	limiter  *limiter.MinInterval
	logger   zerolog.Logger

	containers cache.Cache[string, []string]
	listings   cache.Cache[store.ContainerRef, store.KeyListing]
	values     cache.Cache[ValueKey, store.ValueRecord]

	listingFlight   singleflight.Group
	containerFlight singleflight.Group
}

// New creates a Service with in-memory caches.
func New(cfg Config, client store.Client, logger zerolog.Logger) *Service {
	cfg.applyDefaults()
	return newService(cfg, client,
		cache.NewTTLCache[string, []string](cfg.ListingTTL, logger),
		cache.NewTTLCache[store.ContainerRef, store.KeyListing](cfg.ListingTTL, logger),
		cache.NewTTLCache[ValueKey, store.ValueRecord](0, logger),
		logger,
	)
}

// NewWithCaches creates a Service around caller-provided cache
// implementations, for deployments that share a Redis-backed cache across
// processes. The listing caches should expire at cfg.ListingTTL; the
// value cache should not expire (its cadence is governed by the rate
// limiter).
func NewWithCaches(
	cfg Config,
	client store.Client,
	containers cache.Cache[string, []string],
	listings cache.Cache[store.ContainerRef, store.KeyListing],
	values cache.Cache[ValueKey, store.ValueRecord],
	logger zerolog.Logger,
) *Service {
	cfg.applyDefaults()
	return newService(cfg, client, containers, listings, values, logger)
}

func newService(
	cfg Config,
	client store.Client,
	containers cache.Cache[string, []string],
	listings cache.Cache[store.ContainerRef, store.KeyListing],
	values cache.Cache[ValueKey, store.ValueRecord],
	logger zerolog.Logger,
) *Service {
	return &Service{
		cfg:        cfg,
		client:     client,
		detector:   throttle.NewDetector(cfg.Sentinel),
		limiter:    limiter.NewMinInterval(cfg.MinInterval),
		logger:     logger.With().Str("component", "StoreCacheService").Logger(),
		containers: containers,
		listings:   listings,
		values:     values,
	}
}

// ListContainersCached returns the container names, serving the cached
// listing while it is unexpired.
func (s *Service) ListContainersCached(ctx context.Context) ([]string, error) {
	if names, ok := s.containers.Get(ctx, containersKey); ok {
		s.logger.Debug().Int("containers", len(names)).Msg("Container listing served from cache.")
		return names, nil
	}
	return s.fetchContainers(ctx)
}

// ListKeysCached returns the container's key listing, serving the cached
// listing while it is unexpired. Concurrent misses for the same container
// share one underlying store call.
func (s *Service) ListKeysCached(ctx context.Context, ref store.ContainerRef) (store.KeyListing, error) {
	if listing, ok := s.listings.Get(ctx, ref); ok {
		s.logger.Debug().Str("container", ref.String()).Int("keys", len(listing.Keys)).Msg("Key listing served from cache.")
		return listing, nil
	}
	return s.fetchListing(ctx, ref)
}

// GetValueCached fetches a key's value, gated by the per-key rate
// limiter. A denied fetch serves the last fetched value when one exists,
// marked with fallback provenance; otherwise it returns ErrTooSoon.
func (s *Service) GetValueCached(ctx context.Context, ref store.ContainerRef, key string) (store.ValueRecord, error) {
	vk := ValueKey{Ref: ref, Key: key}
	if !s.limiter.Allow(vk.String()) {
		if rec, ok := s.values.Get(ctx, vk); ok {
			rec.Provenance = store.ProvenanceFallback
			rec.Source = "cache"
			s.logger.Debug().Str("target", vk.String()).Msg("Value fetch rate-limited; served last fetched value.")
			return rec, nil
		}
		return store.ValueRecord{}, fmt.Errorf("value fetch for %s denied, retry in %s: %w",
			vk.String(), s.limiter.RetryAfter(vk.String()), ErrTooSoon)
	}
	return s.fetchValue(ctx, ref, key)
}

// ClearAllCache flushes every cached container listing, key listing, and
// value. The rate limiter's call history is deliberately kept: clearing
// the cache must not open a burst window against the store.
func (s *Service) ClearAllCache(ctx context.Context) {
	s.containers.InvalidateAll(ctx)
	s.listings.InvalidateAll(ctx)
	s.values.InvalidateAll(ctx)
	s.logger.Info().Msg("Cleared all cached store data.")
}

// unavailable maps a client transport failure onto ErrStoreUnavailable,
// leaving already-typed errors untouched.
func unavailable(err error) error {
	if errors.Is(err, store.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
}
