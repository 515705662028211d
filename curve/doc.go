// SPDX-License-Identifier: EPL-2.0

// Package curve expands a sparse plan into dense per-sample parameter curves.
//
// Each parameter is linearly interpolated between keyframe times and held
// before the first and after the last keyframe, so the curves always cover
// the whole signal. A centered moving average then removes the corners at
// keyframes. The window is symmetric, so nothing is shifted in time, and
// every output is kept inside the range of the samples under its window,
// which keeps flat stretches exact and ramps monotonic.
package curve
