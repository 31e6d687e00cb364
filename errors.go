package adwin

import "errors"

// ErrInvalidDelta is returned by New when delta is outside the open
// interval (0, 1).
var ErrInvalidDelta = errors.New("adwin: delta must be in (0, 1)")

// ErrNonFinite is returned by Fit when given NaN or +/-Inf. Non-finite
// samples are rejected at the boundary rather than folded into the
// running aggregate.
var ErrNonFinite = errors.New("adwin: sample is not finite")
