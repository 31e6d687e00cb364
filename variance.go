package adwin

// varianceSummary is the V triple (n, mean, sum-of-squared-deviations) from
// which a bucket's contribution to the window is reconstructed. It never
// stores raw samples; fit and mergeVariance are the only operations that
// compute its fields.
type varianceSummary struct {
	n  float64
	mu float64
	s  float64
}

// empty reports whether the summary has absorbed no samples.
func (v varianceSummary) empty() bool {
	return v.n == 0
}

// fit incorporates one sample using Welford's online update.
func (v *varianceSummary) fit(x float64) {
	v.n++
	delta := x - v.mu
	v.mu += delta / v.n
	v.s += delta * (x - v.mu)
}

// variance returns the sample variance s/n, or 0 for an empty summary.
func (v varianceSummary) variance() float64 {
	if v.n <= 0 {
		return 0
	}
	return v.s / v.n
}

// mergeVariance combines two variance summaries using the numerically
// stable Chan/Welford parallel update. The result is independent of
// argument order up to floating-point rounding.
func mergeVariance(a, b varianceSummary) varianceSummary {
	if a.n == 0 {
		return b
	}
	if b.n == 0 {
		return a
	}
	n := a.n + b.n
	delta := b.mu - a.mu
	mu := a.mu + delta*b.n/n
	s := a.s + b.s + delta*delta*a.n*b.n/n
	return varianceSummary{n: n, mu: mu, s: s}
}

// meanSummary is the M pair (n, mean) used by the change detector, which
// only ever needs counts and means, never the variance-of-partition.
type meanSummary struct {
	n  float64
	mu float64
}

// fitSummary folds a variance summary's (n, mean) into a mean summary, used
// when initializing the detector's running partitions from live buckets.
func (m *meanSummary) fitSummary(v varianceSummary) {
	*m = mergeMean(*m, meanSummary{n: v.n, mu: v.mu})
}

// mergeMean parallel-combines two mean summaries.
func mergeMean(a, b meanSummary) meanSummary {
	if a.n == 0 {
		return b
	}
	if b.n == 0 {
		return a
	}
	n := a.n + b.n
	mu := a.mu + (b.mu-a.mu)*b.n/n
	return meanSummary{n: n, mu: mu}
}

// removeDegeneracyEpsilon is the literal threshold below which a remove
// result is treated as numerically degenerate. Fixed per spec, not
// derived from delta.
const removeDegeneracyEpsilon = 1e-9

// removeMean subtracts the contribution of v from m. ok is false when the
// resulting count falls below removeDegeneracyEpsilon, in which case the
// caller must stop scanning rather than trust m.
func removeMean(m meanSummary, v varianceSummary) (out meanSummary, ok bool) {
	n := m.n - v.n
	if n < removeDegeneracyEpsilon {
		return meanSummary{}, false
	}
	mu := (m.mu*m.n - v.mu*v.n) / n
	return meanSummary{n: n, mu: mu}, true
}
