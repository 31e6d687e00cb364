package adwin

import (
	"math"

	"go.uber.org/zap"
)

// ShiftFunc is the shift-detected callback: a single-method polymorphic
// handle invoked synchronously, inside the Fit call that detected drift,
// after the prune has already been applied. It sees the post-prune
// state. A plain function value is preferred here over a one-method
// interface, favoring free functions over object state.
type ShiftFunc func(*AdaptiveMean)

// AdaptiveMean is an online mean estimator over a stream whose
// distribution may shift. The zero value is not usable; construct one
// with New.
type AdaptiveMean struct {
	cfg     Config
	onShift ShiftFunc
	logger  *zap.Logger

	window *window
	agg    varianceSummary

	// lastPruned records whether the most recent Fit transitioned the
	// detector from tracking to just-pruned. It exists purely for
	// introspection/logging; the callback itself fires unconditionally
	// on that transition regardless of who reads this field.
	lastPruned bool
	lastDrift  DriftInfo
}

// DriftInfo describes the before/after state of the most recent drift
// event, for callers (such as internal/adwinlog) that want to persist
// an audit trail without re-deriving it from Mean/Nobs diffs.
type DriftInfo struct {
	Dropped    float64
	NobsBefore int64
	NobsAfter  int64
	MeanBefore float64
	MeanAfter  float64
}

// New constructs an AdaptiveMean. delta is the target false-positive
// rate of the change test and must be in (0, 1); onShift may be nil,
// which installs a no-op callback.
func New(delta float64, onShift ShiftFunc) (*AdaptiveMean, error) {
	return NewWithConfig(Config{Delta: delta}, onShift)
}

// NewWithConfig constructs an AdaptiveMean from a Config, allowing an
// optional logger and metrics registration alongside delta.
func NewWithConfig(cfg Config, onShift ShiftFunc) (*AdaptiveMean, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if onShift == nil {
		onShift = func(*AdaptiveMean) {}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdaptiveMean{
		cfg:     cfg,
		onShift: onShift,
		logger:  logger,
		window:  newWindow(),
	}, nil
}

// Fit ingests one sample: it is folded into the write slot, the
// aggregate is updated, compression cascades any full rows, and the
// change detector scans for a drift cut. If a drift is declared, the
// aged-out prefix is pruned, the aggregate is rebuilt from the
// survivors, and the shift callback fires before Fit returns.
func (a *AdaptiveMean) Fit(x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return ErrNonFinite
	}

	a.window.fitWrite(x)
	a.agg.fit(x)
	a.window.compress()

	result := detectChange(a.window, a.agg, a.cfg.Delta)
	a.lastPruned = result.drifted

	if !result.drifted {
		a.cfg.Metrics.observeFit(a.agg.n, a.agg.mu)
		a.logger.Debug("adwin fit",
			zap.Float64("x", x),
			zap.Float64("nobs", a.agg.n),
			zap.Float64("mean", a.agg.mu),
		)
		return nil
	}

	before := a.agg
	a.agg = a.window.aggregateUpTo(result.cutIndex)
	a.lastDrift = DriftInfo{
		Dropped:    before.n - a.agg.n,
		NobsBefore: int64(before.n),
		NobsAfter:  int64(a.agg.n),
		MeanBefore: before.mu,
		MeanAfter:  a.agg.mu,
	}
	dropped := a.lastDrift.Dropped

	a.cfg.Metrics.observeDrift()
	a.cfg.Metrics.observeFit(a.agg.n, a.agg.mu)
	a.logger.Info("adwin drift detected, window pruned",
		zap.Float64("x", x),
		zap.Float64("dropped", dropped),
		zap.Float64("nobs", a.agg.n),
		zap.Float64("mean", a.agg.mu),
	)

	a.onShift(a)
	return nil
}

// Mean returns the current windowed mean estimate.
func (a *AdaptiveMean) Mean() float64 {
	return a.agg.mu
}

// Value is an alias for Mean.
func (a *AdaptiveMean) Value() float64 {
	return a.agg.mu
}

// Nobs returns the number of live samples currently represented by the
// window.
func (a *AdaptiveMean) Nobs() int64 {
	return int64(a.agg.n)
}

// Stats returns the aggregate variance summary (count, mean, and
// sample variance) of every live observation in the window.
func (a *AdaptiveMean) Stats() (n int64, mean float64, variance float64) {
	return int64(a.agg.n), a.agg.mu, a.agg.variance()
}

// LastFitPruned reports whether the most recent Fit call transitioned
// the detector from tracking to just-pruned.
func (a *AdaptiveMean) LastFitPruned() bool {
	return a.lastPruned
}

// LastDrift returns the before/after snapshot of the most recent drift
// event. Its value is meaningless unless LastFitPruned reports true.
func (a *AdaptiveMean) LastDrift() DriftInfo {
	return a.lastDrift
}

// Wrapper is an alternative ingestion handle onto an existing
// AdaptiveMean that shares its underlying window and aggregate but
// suppresses the change detector entirely: samples fed through the
// Wrapper run the same bucket-compression pipeline and are folded into
// the shared aggregate, they just never trigger a prune. Every
// accessor reads through to the same state the wrapped AdaptiveMean
// itself reports, so a sample fed through either handle is immediately
// visible from the other. This is useful for diagnostic A/B
// comparisons: what would the window's mean be without drift pruning?
//
// This is not equivalent to constructing an AdaptiveMean with delta=0 —
// delta=0 is an invalid configuration (New rejects it), and even a
// vanishingly small delta can still fire. Wrapper is the only supported
// way to get detector-free bucketing.
type Wrapper struct {
	am *AdaptiveMean
}

// WithoutDropping returns a Wrapper sharing am's window and aggregate.
func WithoutDropping(am *AdaptiveMean) *Wrapper {
	return &Wrapper{am: am}
}

// Fit ingests one sample into the shared window and aggregate without
// ever invoking the change detector.
func (w *Wrapper) Fit(x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return ErrNonFinite
	}
	w.am.window.fitWrite(x)
	w.am.agg.fit(x)
	w.am.window.compress()
	return nil
}

// Mean returns the underlying AdaptiveMean's current windowed mean
// estimate.
func (w *Wrapper) Mean() float64 { return w.am.Mean() }

// Nobs returns the underlying AdaptiveMean's current live sample count.
func (w *Wrapper) Nobs() int64 { return w.am.Nobs() }
