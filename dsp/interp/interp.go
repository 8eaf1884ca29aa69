package interp

// Mode selects a fractional interpolation algorithm.
type Mode int

const (
	// Linear uses [Linear2].
	Linear Mode = iota
	// Hermite uses [Hermite4].
	Hermite
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Hermite:
		return "hermite"
	default:
		return "unknown"
	}
}

// Linear2 interpolates between x0 and x1 at fraction t in [0,1].
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)

	return ((c3*t+c2)*t+c1)*t + c0
}

// Table reads table at a fractional index with linear interpolation,
// clamping to the first and last entries.
func Table(table []float64, pos float64) float64 {
	n := len(table)
	if n == 0 {
		return 0
	}

	if pos <= 0 || pos != pos {
		return table[0]
	}

	last := float64(n - 1)
	if pos >= last {
		return table[n-1]
	}

	i := int(pos)

	return Linear2(pos-float64(i), table[i], table[i+1])
}
