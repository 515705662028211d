// SPDX-License-Identifier: EPL-2.0

// Package filter provides the small IIR building blocks used across the
// renderer: second order low-pass and high-pass sections designed from the
// RBJ audio EQ cookbook.
//
// Sections keep their state when their coefficients change, which lets a
// caller sweep the cutoff of a running filter without restarting it:
//
//	lp := filter.NewLowpass(48000, 18000, filter.ButterworthQ)
//	for i := range samples {
//	    if i%4096 == 0 {
//	        lp.SetLowpass(48000, cutoffs[i], filter.ButterworthQ)
//	    }
//	    samples[i] = lp.Process(samples[i])
//	}
package filter
