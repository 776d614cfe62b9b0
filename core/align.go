package core

import "math"

// DefaultUBOAlignment is the staging-buffer alignment required by spec §6:
// "all staged buffer slices aligned to 256 bytes."
const DefaultUBOAlignment = 256

// AlignUp rounds size up to the next multiple of alignment. alignment must
// be a power of two.
func AlignUp(size, alignment uint64) uint64 {
	if alignment == 0 {
		return size
	}
	return (size + alignment - 1) &^ (alignment - 1)
}

// RoundScale applies banker's rounding (round-half-to-even) to a computed
// pass dimension, per spec §9's resolution of the "exact numeric rounding
// rule" open question.
func RoundScale(v float64) int {
	return int(math.RoundToEven(v))
}
