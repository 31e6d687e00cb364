// Package adwinmgr tracks a bounded population of independent adwin
// engines, one per stream key, behind an LRU-evicted cache so a
// process ingesting an unbounded number of distinct stream keys has a
// fixed memory ceiling instead of an ever-growing map.
package adwinmgr

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/coldshift/adwin"
)

// Manager lazily creates and bounds access to one AdaptiveMean per
// stream key. Eviction never invokes a stream's shift callback: an
// evicted stream's state is simply discarded.
type Manager struct {
	cache   *lru.Cache[string, *adwin.AdaptiveMean]
	cfg     adwin.Config
	logger  *zap.Logger
	onDrift func(streamKey string, info adwin.DriftInfo)
}

// New creates a Manager bounded to maxStreams concurrently tracked
// stream keys. Every stream created by the Manager is built from the
// given Config as is, including its Logger and Metrics: a non-nil
// Metrics is shared by every stream, so its counters and gauges are not
// broken out per stream key.
func New(maxStreams int, cfg adwin.Config, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{cfg: cfg, logger: logger}

	onEvict := func(key string, _ *adwin.AdaptiveMean) {
		m.logger.Debug("adwinmgr: stream evicted", zap.String("stream", key))
	}
	cache, err := lru.NewWithEvict(maxStreams, onEvict)
	if err != nil {
		return nil, fmt.Errorf("adwinmgr: new cache: %w", err)
	}
	m.cache = cache
	return m, nil
}

// OnDrift registers a callback invoked after every drift event across
// every stream the Manager tracks, receiving the stream key alongside
// the same DriftInfo snapshot the stream's own ShiftFunc would see.
// Intended for wiring a shared audit sink such as internal/adwinlog
// without every stream needing to know its own key.
func (m *Manager) OnDrift(fn func(streamKey string, info adwin.DriftInfo)) {
	m.onDrift = fn
}

// GetOrCreate returns the AdaptiveMean tracking key, creating one with
// the Manager's shared Config if this is the first time key has been
// seen (or if key was previously evicted).
func (m *Manager) GetOrCreate(key string) (*adwin.AdaptiveMean, error) {
	if am, ok := m.cache.Get(key); ok {
		return am, nil
	}

	shift := func(am *adwin.AdaptiveMean) {
		if m.onDrift != nil {
			m.onDrift(key, am.LastDrift())
		}
	}
	am, err := adwin.NewWithConfig(m.cfg, shift)
	if err != nil {
		return nil, fmt.Errorf("adwinmgr: create stream %q: %w", key, err)
	}
	m.cache.Add(key, am)
	return am, nil
}

// Fit routes one sample to the named stream's AdaptiveMean, creating
// the stream on first use.
func (m *Manager) Fit(key string, x float64) error {
	am, err := m.GetOrCreate(key)
	if err != nil {
		return err
	}
	return am.Fit(x)
}

// Count returns the number of streams currently resident in the cache.
func (m *Manager) Count() int {
	return m.cache.Len()
}

// Keys returns the stream keys currently resident in the cache, in
// least-recently-used to most-recently-used order.
func (m *Manager) Keys() []string {
	return m.cache.Keys()
}

// Remove evicts a single stream's state, as if it had aged out of the
// cache naturally.
func (m *Manager) Remove(key string) {
	m.cache.Remove(key)
}
