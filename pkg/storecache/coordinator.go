package storecache

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/illmade-knight/go-storecache/pkg/store"
	"github.com/illmade-knight/go-storecache/pkg/throttle"
	"github.com/rs/zerolog"
)

// RefreshContainers forces a fresh container listing, bypassing the
// cached one.
func (s *Service) RefreshContainers(ctx context.Context) ([]string, error) {
	s.containers.Invalidate(ctx, containersKey)
	return s.fetchContainers(ctx)
}

// RefreshListing forces a fresh key listing for the container. The cached
// slot is invalidated up front, so even a failed refresh leaves stale data
// unservable. If the listing call itself is throttled, a bounded set of
// candidate keys is probed directly; the first key that yields a real
// value becomes a one-element listing marked Partial. When every candidate
// is exhausted the slot is left empty and store.ErrStoreThrottled is
// returned.
func (s *Service) RefreshListing(ctx context.Context, ref store.ContainerRef) (store.KeyListing, error) {
	s.listings.Invalidate(ctx, ref)
	return s.fetchListing(ctx, ref)
}

// RefreshValue forces a fresh value fetch for a single key, bypassing the
// rate limiter: an explicit refresh always issues a call.
func (s *Service) RefreshValue(ctx context.Context, ref store.ContainerRef, key string) (store.ValueRecord, error) {
	s.values.Invalidate(ctx, ValueKey{Ref: ref, Key: key})
	return s.fetchValue(ctx, ref, key)
}

// fetchContainers issues the container listing call, collapsing
// concurrent callers into one flight.
func (s *Service) fetchContainers(ctx context.Context) ([]string, error) {
	ch := s.containerFlight.DoChan(containersKey, func() (any, error) {
		opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.FetchTimeout)
		defer cancel()
		return s.loadContainers(opCtx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]string), nil
	case <-ctx.Done():
		// The flight keeps running so the slot re-populates for the
		// callers still waiting on it.
		return nil, ctx.Err()
	}
}

func (s *Service) loadContainers(ctx context.Context) ([]string, error) {
	log := s.opLogger().Logger()
	names, err := s.client.ListContainers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Container listing failed.")
		return nil, unavailable(err)
	}

	// The sentinel can surface as a fake container name when the store
	// throttles the top-level listing. There is nothing to probe at this
	// level, so a throttled listing is reported directly.
	cls := s.detector.ClassifyListing(namesAsListing(names))
	switch cls.Verdict {
	case throttle.VerdictThrottled:
		log.Warn().Msg("Container listing throttled by store.")
		return nil, fmt.Errorf("list containers: %w", store.ErrStoreThrottled)
	case throttle.VerdictEmpty:
		return []string{}, nil
	default:
		s.containers.Put(ctx, containersKey, names, throttle.VerdictReal)
		log.Debug().Int("containers", len(names)).Msg("Container listing refreshed.")
		return names, nil
	}
}

// fetchListing issues the key listing call for a container, collapsing
// concurrent callers (cached-read misses and explicit refreshes alike)
// into one flight per container.
func (s *Service) fetchListing(ctx context.Context, ref store.ContainerRef) (store.KeyListing, error) {
	ch := s.listingFlight.DoChan(ref.String(), func() (any, error) {
		// Once the slot is invalidated the operation must run to
		// completion regardless of the triggering caller, bounded by its
		// own timeout.
		opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.FetchTimeout)
		defer cancel()
		return s.loadListing(opCtx, ref)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return store.KeyListing{}, res.Err
		}
		return res.Val.(store.KeyListing), nil
	case <-ctx.Done():
		return store.KeyListing{}, ctx.Err()
	}
}

func (s *Service) loadListing(ctx context.Context, ref store.ContainerRef) (store.KeyListing, error) {
	log := s.opLogger().Str("container", ref.String()).Logger()

	listing, err := s.client.ListKeys(ctx, ref, "", s.cfg.ListingLimit)
	if err != nil {
		log.Error().Err(err).Msg("Key listing failed.")
		return store.KeyListing{}, unavailable(err)
	}

	cls := s.detector.ClassifyListing(listing)
	switch cls.Verdict {
	case throttle.VerdictReal:
		s.listings.Put(ctx, ref, listing, throttle.VerdictReal)
		log.Debug().Int("keys", len(listing.Keys)).Msg("Key listing refreshed.")
		return listing, nil
	case throttle.VerdictEmpty:
		// Confirmed empty is a valid result but is not cached, so a
		// container that gains its first key appears promptly.
		log.Debug().Msg("Container confirmed empty.")
		return store.KeyListing{}, nil
	default:
		log.Warn().Str("hint_key", cls.HintKey).Msg("Key listing throttled by store; probing candidate keys.")
		return s.probeListing(ctx, ref, cls.HintKey, log)
	}
}

// probeListing recovers from a throttled listing by fetching a small
// fixed set of candidate keys directly. Value reads are throttled
// independently of listing reads, so one of them often succeeds while the
// listing call is being rejected.
func (s *Service) probeListing(ctx context.Context, ref store.ContainerRef, hint string, log zerolog.Logger) (store.KeyListing, error) {
	for _, candidate := range s.probeCandidates(hint) {
		rec, err := s.RefreshValue(ctx, ref, candidate)
		if err != nil {
			if errors.Is(err, store.ErrStoreUnavailable) {
				return store.KeyListing{}, err
			}
			// Throttled probe; try the next candidate.
			continue
		}
		if rec.Value == nil {
			// Key does not exist in this container.
			continue
		}

		listing := store.KeyListing{
			Keys:    []store.KeyDescriptor{{Name: candidate, Size: rec.Size}},
			Partial: true,
		}
		s.listings.Put(ctx, ref, listing, throttle.VerdictReal)
		log.Info().Str("key", candidate).Msg("Probe recovered a real key from throttled listing.")
		return listing, nil
	}

	log.Warn().Msg("All candidate probes throttled or missing; giving up.")
	return store.KeyListing{}, fmt.Errorf("list keys for %s: %w", ref, store.ErrStoreThrottled)
}

// probeCandidates orders the probe set: a key name seen incidentally in
// the throttled listing first, then the user's own identifier-derived
// key, then the configured generic names. Duplicates and blanks are
// dropped; the set is fixed per call, so the probe loop has a hard bound.
func (s *Service) probeCandidates(hint string) []string {
	candidates := make([]string, 0, len(s.cfg.ProbeKeys)+2)
	seen := make(map[string]struct{})
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		candidates = append(candidates, name)
	}

	add(hint)
	add(s.cfg.OwnerKey)
	for _, name := range s.cfg.ProbeKeys {
		add(name)
	}
	return candidates
}

// fetchValue issues a value fetch and classifies the result. Real values
// are cached; a throttled placeholder is returned alongside
// store.ErrStoreThrottled with fallback provenance so the caller can
// still label what it is showing.
func (s *Service) fetchValue(ctx context.Context, ref store.ContainerRef, key string) (store.ValueRecord, error) {
	vk := ValueKey{Ref: ref, Key: key}
	log := s.opLogger().Str("target", vk.String()).Logger()

	rec, err := s.client.GetValue(ctx, ref, key)
	if err != nil {
		log.Error().Err(err).Msg("Value fetch failed.")
		return store.ValueRecord{}, unavailable(err)
	}
	rec.Key = key

	cls := s.detector.ClassifyValue(rec)
	switch cls.Verdict {
	case throttle.VerdictReal:
		rec.Provenance = store.ProvenanceReal
		if rec.Source == "" {
			rec.Source = "store"
		}
		s.values.Put(ctx, vk, rec, throttle.VerdictReal)
		log.Debug().Str("type", rec.Type).Msg("Value fetched from store.")
		return rec, nil
	case throttle.VerdictEmpty:
		// Confirmed missing: a valid answer, not cached.
		rec.Provenance = store.ProvenanceReal
		if rec.Source == "" {
			rec.Source = "store"
		}
		log.Debug().Msg("Key confirmed missing from store.")
		return rec, nil
	default:
		rec.Provenance = store.ProvenanceFallback
		rec.Source = "throttled"
		log.Warn().Msg("Value fetch throttled by store.")
		return rec, fmt.Errorf("get value for %s: %w", vk.String(), store.ErrStoreThrottled)
	}
}

// opLogger starts a log context carrying a fresh operation ID so the
// events of one refresh can be correlated.
func (s *Service) opLogger() zerolog.Context {
	return s.logger.With().Str("op_id", uuid.NewString())
}

func namesAsListing(names []string) store.KeyListing {
	listing := store.KeyListing{Keys: make([]store.KeyDescriptor, 0, len(names))}
	for _, name := range names {
		listing.Keys = append(listing.Keys, store.KeyDescriptor{Name: name})
	}
	return listing
}
