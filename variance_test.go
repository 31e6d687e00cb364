package adwin

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestVarianceSummary_FitConverges(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		samples  int
		wantMean float64
	}{
		{"constant 1.0 x100", 1.0, 100, 1.0},
		{"constant -5.0 x50", -5.0, 50, -5.0},
		{"constant 0.0 x10", 0.0, 10, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v varianceSummary
			for i := 0; i < tt.samples; i++ {
				v.fit(tt.value)
			}
			if math.Abs(v.mu-tt.wantMean) > epsilon {
				t.Errorf("mean = %v, want %v", v.mu, tt.wantMean)
			}
			if v.variance() > epsilon {
				t.Errorf("variance = %v, want ~0 for constant input", v.variance())
			}
			if v.n != float64(tt.samples) {
				t.Errorf("n = %v, want %v", v.n, tt.samples)
			}
		})
	}
}

func TestVarianceSummary_MergeOrderIndependent(t *testing.T) {
	samples := []float64{1, 2, 3, 4, 5, -2, 7.5}

	var direct varianceSummary
	for _, x := range samples {
		direct.fit(x)
	}

	// Split into two groups, fit separately, merge; should match fitting
	// the full sequence directly, up to floating point error.
	var a, b varianceSummary
	for i, x := range samples {
		if i%2 == 0 {
			a.fit(x)
		} else {
			b.fit(x)
		}
	}
	merged := mergeVariance(a, b)

	if math.Abs(merged.mu-direct.mu) > 1e-9 {
		t.Errorf("merged mean = %v, want %v", merged.mu, direct.mu)
	}
	if math.Abs(merged.variance()-direct.variance()) > 1e-9 {
		t.Errorf("merged variance = %v, want %v", merged.variance(), direct.variance())
	}
	if merged.n != direct.n {
		t.Errorf("merged n = %v, want %v", merged.n, direct.n)
	}
}

func TestVarianceSummary_MergeWithEmpty(t *testing.T) {
	var v varianceSummary
	v.fit(10)
	v.fit(20)

	var empty varianceSummary

	if got := mergeVariance(v, empty); got != v {
		t.Errorf("merge with empty (rhs) = %+v, want %+v", got, v)
	}
	if got := mergeVariance(empty, v); got != v {
		t.Errorf("merge with empty (lhs) = %+v, want %+v", got, v)
	}
}

func TestMergeMean_ParallelsVarianceMerge(t *testing.T) {
	a := varianceSummary{n: 3, mu: 10}
	b := varianceSummary{n: 7, mu: 20}

	mv := mergeVariance(a, b)
	mm := mergeMean(meanSummary{n: a.n, mu: a.mu}, meanSummary{n: b.n, mu: b.mu})

	if math.Abs(mv.mu-mm.mu) > epsilon {
		t.Errorf("mean mismatch: variance-merge=%v mean-merge=%v", mv.mu, mm.mu)
	}
	if mv.n != mm.n {
		t.Errorf("n mismatch: variance-merge=%v mean-merge=%v", mv.n, mm.n)
	}
}

func TestMeanSummary_FitSummaryAccumulatesAcrossSlots(t *testing.T) {
	var m meanSummary
	m.fitSummary(varianceSummary{n: 3, mu: 10})
	m.fitSummary(varianceSummary{n: 7, mu: 20})

	want := mergeMean(meanSummary{n: 3, mu: 10}, meanSummary{n: 7, mu: 20})
	if m.n != want.n || math.Abs(m.mu-want.mu) > epsilon {
		t.Errorf("m = %+v, want %+v", m, want)
	}
}

func TestMeanSummary_FitSummarySkipsEmptySlot(t *testing.T) {
	m := meanSummary{n: 5, mu: 2}
	m.fitSummary(varianceSummary{})
	if m.n != 5 || m.mu != 2 {
		t.Errorf("m = %+v, want unchanged by an empty slot", m)
	}
}

func TestRemoveMean(t *testing.T) {
	agg := meanSummary{n: 10, mu: 5}
	part := varianceSummary{n: 4, mu: 2}

	out, ok := removeMean(agg, part)
	if !ok {
		t.Fatal("expected ok=true")
	}
	wantN := 6.0
	wantMu := (5*10.0 - 2*4.0) / 6.0
	if out.n != wantN {
		t.Errorf("n = %v, want %v", out.n, wantN)
	}
	if math.Abs(out.mu-wantMu) > epsilon {
		t.Errorf("mu = %v, want %v", out.mu, wantMu)
	}
}

func TestRemoveMean_Degenerate(t *testing.T) {
	agg := meanSummary{n: 4, mu: 1}
	part := varianceSummary{n: 4, mu: 1}

	_, ok := removeMean(agg, part)
	if ok {
		t.Fatal("expected ok=false when resulting n collapses below epsilon")
	}
}
