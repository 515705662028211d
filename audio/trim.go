// SPDX-License-Identifier: EPL-2.0

package audio

import "math"

const (
	trimFrame = 2048
	trimHop   = 512
)

// TrimSilence drops leading and trailing frames whose RMS is more than
// topDB below the loudest frame. It returns the trimmed buffer, which
// shares memory with m, and the number of leading samples removed.
// An all-silent buffer is returned unchanged.
func TrimSilence(m Mono, topDB float64) (Mono, int) {
	n := len(m.Samples)
	if topDB <= 0 || n == 0 {
		return m, 0
	}

	frames := 1
	if n > trimFrame {
		frames += (n - trimFrame + trimHop - 1) / trimHop
	}

	rms := make([]float64, frames)
	var ref float64
	for k := range rms {
		lo := k * trimHop
		hi := min(lo+trimFrame, n)
		var sum float64
		for _, v := range m.Samples[lo:hi] {
			sum += v * v
		}
		rms[k] = math.Sqrt(sum / float64(hi-lo))
		ref = math.Max(ref, rms[k])
	}
	if ref == 0 {
		return m, 0
	}

	threshold := ref * math.Pow(10, -topDB/20)
	first, last := -1, -1
	for k, v := range rms {
		if v > threshold {
			if first < 0 {
				first = k
			}
			last = k
		}
	}

	start := first * trimHop
	end := min(last*trimHop+trimFrame, n)
	m.Samples = m.Samples[start:end]

	return m, start
}
