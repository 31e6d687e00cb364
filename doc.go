// Package adwin maintains an online estimate of the mean of a real-valued
// stream whose underlying distribution may shift over time. It implements
// the ADWIN2 scheme of Bifet and Gavaldà: a bucketed, geometrically-growing
// compression structure stores a lossy summary of the live window in
// constant space per decade of age, and an incremental change-detection
// test walks every valid cut point of the window on every update, pruning
// the prefix that predates a statistically significant shift.
//
// The zero-value of AdaptiveMean is not usable; construct one with New.
// AdaptiveMean is not safe for concurrent use: Fit must not be called
// concurrently with itself, with any accessor, or re-entrantly from the
// shift-detected callback.
package adwin
