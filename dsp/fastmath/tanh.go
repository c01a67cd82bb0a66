package fastmath

// TanhRational5 approximates tanh with the [5/4] continued-fraction rational
//
//	x * (945 + 105x² + x⁴) / (945 + 420x² + 15x⁴)
//
// and saturates to ±1 where the rational overshoots (|x| ≳ 3.7).
func TanhRational5(x float64) float64 {
	x2 := x * x
	y := x * (945 + 105*x2 + x2*x2) / (945 + 420*x2 + 15*x2*x2)

	if y > 1 {
		return 1
	}

	if y < -1 {
		return -1
	}

	return y
}
