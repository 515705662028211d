// SPDX-License-Identifier: EPL-2.0

package curve

// Smooth applies a centered moving average of odd length window to x and
// returns a new slice. Edges replicate the first and last value.
//
// The result at i is clamped to [min, max] of the samples under the window.
// A flat window therefore reproduces its value exactly and the running sum
// cannot leak rounding drift past a corner.
func Smooth(x []float64, window int) []float64 {
	out := make([]float64, len(x))
	half := window / 2
	if half <= 0 || len(x) < 2 {
		copy(out, x)
		return out
	}

	// padded view: index j maps to x[clamp(j-half)]
	at := func(j int) float64 {
		j -= half
		switch {
		case j < 0:
			return x[0]
		case j >= len(x):
			return x[len(x)-1]
		}
		return x[j]
	}

	w := 2*half + 1
	padded := len(x) + 2*half

	var sum float64
	for j := range w {
		sum += at(j)
	}

	lo := newMonoDeque(func(a, b float64) bool { return a <= b })
	hi := newMonoDeque(func(a, b float64) bool { return a >= b })
	for j := range w {
		lo.push(j, at(j))
		hi.push(j, at(j))
	}

	for i := range x {
		mean := sum / float64(w)
		out[i] = min(max(mean, lo.front()), hi.front())

		next := i + w
		if next >= padded {
			break
		}
		// a single rounded increment per step keeps ramps monotonic
		sum += at(next) - at(i)
		lo.push(next, at(next))
		hi.push(next, at(next))
		lo.expire(i + 1)
		hi.expire(i + 1)
	}

	return out
}

// monoDeque tracks the sliding-window extreme selected by keep.
type monoDeque struct {
	idx  []int
	val  []float64
	keep func(front, back float64) bool
}

func newMonoDeque(keep func(a, b float64) bool) *monoDeque {
	return &monoDeque{keep: keep}
}

func (d *monoDeque) push(i int, v float64) {
	for n := len(d.val); n > 0 && !d.keep(d.val[n-1], v); n = len(d.val) {
		d.idx = d.idx[:n-1]
		d.val = d.val[:n-1]
	}
	d.idx = append(d.idx, i)
	d.val = append(d.val, v)
}

// expire drops entries with index below first.
func (d *monoDeque) expire(first int) {
	k := 0
	for k < len(d.idx) && d.idx[k] < first {
		k++
	}
	if k > 0 {
		d.idx = d.idx[k:]
		d.val = d.val[k:]
	}
}

func (d *monoDeque) front() float64 { return d.val[0] }
