package util

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]
func Clamp[A constraints.Ordered](v, lo, hi A) A {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Mod is the non-negative remainder of a / b (b > 0)
func Mod[A constraints.Signed](a, b A) A {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// FloorDiv divides rounding toward negative infinity (b > 0)
func FloorDiv[A constraints.Signed](a, b A) A {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

// ClampNote clamps any integer into the MIDI note range
func ClampNote[A constraints.Integer](n A) uint8 {
	if n < 0 {
		return 0
	}
	if n > 127 {
		return 127
	}
	return uint8(n)
}
