package math

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. The bounds may be given in either order.
func Clamp[T constraints.Float | constraints.Integer](v, lo, hi T) T {
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Abs returns the absolute value of x.
func Abs[T constraints.Float | constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Sign returns -1 for negative x and 1 otherwise.
func Sign[T constraints.Float | constraints.Signed](x T) T {
	if x < 0 {
		return -1
	}
	return 1
}
