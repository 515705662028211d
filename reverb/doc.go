// SPDX-License-Identifier: EPL-2.0

// Package reverb adds a room to an already spatialized stereo signal.
//
// A Freeverb network (eight damped combs and four allpasses per channel,
// with the right channel's delays offset by a fixed spread) renders one wet
// copy of the whole signal with fixed room size, damping and width. Only the
// dry/wet ratio changes over time: Mixer.Apply blends the two per sample
// following a mix curve, using either
//
//	linear:      dry*(1-m) + wet*m
//	equal-power: dry*cos(m*pi/2) + wet*sin(m*pi/2)
//
// The mix value is clamped to [0, 1] and the last value holds when the curve
// is shorter than the signal.
package reverb
