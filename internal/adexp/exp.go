package adexp

import "math"

// Exp is the exact exponential.
func Exp(x float64) float64 {
	return math.Exp(x)
}

// ApproxExp is a quartic spline approximation of exp by N.N. Schraudolph,
// evaluated in single precision. Relative error stays below 1e-4 for
// arguments the model produces. Arguments beyond the float32 range return
// 0 or +Inf.
func ApproxExp(x float64) float64 {
	if x <= -88.76731 {
		return 0
	}
	if x >= 88.72283 {
		return math.Inf(1)
	}
	i := int32(12102203*float32(x)) + 127*(1<<23)
	m := i >> 7 & 0xFFFF // mantissa
	i += (((((((((((3537 * m) >> 16) + 13668) * m) >> 18) + 15817) * m) >> 14) - 80470) * m) >> 11)
	return float64(math.Float32frombits(uint32(i)))
}
