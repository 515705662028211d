// SPDX-License-Identifier: EPL-2.0

// Package distance maps source distance and elevation to the gain and tone
// settings the convolution engine applies.
//
// Gain follows one of two laws:
//
//	inverse: ref / max(d, min)
//	soft:    1 / (1 + rolloff * max(d, min)^2)
//
// Both are clamped to a maximum gain, so gain never increases with distance
// and never blows up as the distance approaches zero.
//
// The low-pass cutoff falls linearly from the near to the far frequency
// across the plan's distance range, so distant sources sound duller. The
// high-pass cutoff rises linearly with |elevation| from the ear-level to the
// extreme frequency.
//
// All mappings are pure; a Model holds no state that changes during a render.
package distance
