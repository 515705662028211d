// SPDX-License-Identifier: EPL-2.0

// Package engine turns a mono signal into binaural stereo by block
// convolution with time-varying head-related impulse responses.
//
// The input is cut into fixed blocks (1024 samples by default). For every
// block the direction, distance and gain are read at the block's last
// sample. While they stay put the block is convolved with the current
// impulse response pair. When any of them moves, the block is split into a
// fading-out copy convolved with the old pair and gain, and a complementary
// fading-in copy convolved with the new pair and gain:
//
//	y = conv(x*(1-f)*g0, h0) + conv(x*f*g1, h1),  f = (i+1)/len(x)
//
// The weights sum to one at every instant, so the change of response is
// spread across the block instead of switching mid-signal. When only the
// gain moves, or both directions resolve to the same measured response,
// a single convolution with a ramped gain is enough.
//
// Convolution runs in the frequency domain (gonum dsp/fourier). Response
// spectra are computed once per measured direction per render. Block
// results are overlap-added into an output of len(in)+irLen-1 samples;
// trimming the tail is the caller's business.
//
// An optional tone stage (a high-pass and a low-pass biquad) filters the
// mono input before convolution. Its cutoffs follow the distance and
// elevation curves and are refreshed every few blocks.
//
// Blocks run strictly in order. The context is checked between blocks.
// An Engine has no per-render state and may serve concurrent renders.
package engine
