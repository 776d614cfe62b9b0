package core

import "golang.org/x/exp/constraints"

// Clamp restricts v to [lo, hi], generalized from the teacher's
// engine/math/utils.go Clamp helper (its f32-only version, widened here to
// every ordered numeric type via golang.org/x/exp/constraints since this
// package clamps both float64 parameter values and integer pass
// dimensions).
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Max returns the greater of a and b.
func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Min returns the lesser of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
