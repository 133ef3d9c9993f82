package fitness

// Polynomial builds c[0] + c[1]*x + c[2]*x^2 + ... evaluated by Horner's rule
func Polynomial(coeffs ...float64) TargetFunc {
	c := append([]float64(nil), coeffs...)
	return func(x float64) float64 {
		var y float64
		for i := len(c) - 1; i >= 0; i-- {
			y = y*x + c[i]
		}
		return y
	}
}

// Quadratic is the reference target x^2 + 3x + 2
func Quadratic() TargetFunc {
	return Polynomial(2, 3, 1)
}

// IntRange returns the integers lo..hi inclusive as sample points
func IntRange(lo, hi int) []float64 {
	if hi < lo {
		return nil
	}
	xs := make([]float64, 0, hi-lo+1)
	for x := lo; x <= hi; x++ {
		xs = append(xs, float64(x))
	}
	return xs
}
