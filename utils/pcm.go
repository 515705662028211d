// SPDX-License-Identifier: EPL-2.0

package utils

// FullScale returns the positive full-scale value for a signed PCM bit depth.
// Unknown depths fall back to 16-bit.
func FullScale(bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return 128
	case 24:
		return 8388608
	case 32:
		return 2147483648
	default:
		return 32768
	}
}

// FloatToPCM converts a sample in [-1, 1] to a signed integer of the given
// bit depth. Out of range input is clamped.
func FloatToPCM(x float64, bitDepth int) int {
	x = Clamp(x, -1, 1)
	scale := FullScale(bitDepth)
	v := int(x * scale)
	// +1.0 would overflow by one step
	if maxV := int(scale) - 1; v > maxV {
		v = maxV
	}

	return v
}

// PCMToFloat converts a signed integer sample of the given bit depth to [-1, 1).
func PCMToFloat(v int, bitDepth int) float64 {
	return float64(v) / FullScale(bitDepth)
}
