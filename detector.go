package adwin

import "math"

// detectResult reports the outcome of one change-detection scan.
type detectResult struct {
	drifted  bool
	cutIndex int // flattened slot index of the declared cut, valid only if drifted
}

// detectChange walks every valid cut point of w from newest to oldest.
// It never mutates w on a "not drifted" outcome; on a
// "drifted" outcome it clears the aged-out suffix and returns the index
// the caller should rebuild the aggregate from (aggregateUpTo(cutIndex)).
//
// The scan skips flattened slot 0 (the freshest write slot) deliberately:
// partitioning there gives a left partition of size <= 1 with a noisy
// mean, which is not useful for the test. This is load-bearing, not an
// optimization — do not start at 0.
func detectChange(w *window, agg varianceSummary, delta float64) detectResult {
	n := agg.n
	if n <= 1 {
		return detectResult{}
	}

	deltaPrime := delta / math.Log(n)
	l := math.Log(2 / deltaPrime)
	sigma2 := agg.variance() // snapshotted once, reused for every cut in this scan

	right := meanSummary{n: agg.n, mu: agg.mu}
	var left meanSummary

	for i := 1; i < w.slotCount(); i++ {
		slot := w.slotAt(i)
		if slot.empty() {
			continue
		}

		nextRight, ok := removeMean(right, slot)
		if !ok {
			break // right.n collapsed below the degeneracy threshold; all remaining slots are empty of useful signal
		}
		right = nextRight
		left.fitSummary(slot)

		h := 1/right.n + 1/left.n
		eps := math.Sqrt(2*h*sigma2*l) + (2.0/3.0)*h*l

		if math.Abs(right.mu-left.mu) > eps {
			w.clearAfter(i)
			return detectResult{drifted: true, cutIndex: i}
		}
	}

	return detectResult{}
}
