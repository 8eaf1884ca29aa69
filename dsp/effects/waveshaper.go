package effects

import (
	"fmt"
	"math"
)

// CurveResolution is the number of table entries used for transfer curves.
// Entry i maps the input 2*i/(n-1) - 1, so the table spans [-1, 1].
const CurveResolution = 44100

// CurveKind selects a waveshaping transfer function.
type CurveKind int

const (
	// CurveOverdrive is a soft clipper:
	//
	//	f(x) = ((3+g)*x*20*pi/180) / (pi + g*|x|)
	CurveOverdrive CurveKind = iota
	// CurveDistortion is an exponential hard clipper with a = 1 + amount:
	//
	//	f(x) = sign(x) * (1 - exp(-|a*x|))
	CurveDistortion
)

// String returns the curve name.
func (k CurveKind) String() string {
	switch k {
	case CurveOverdrive:
		return "overdrive"
	case CurveDistortion:
		return "distortion"
	default:
		return fmt.Sprintf("curve(%d)", int(k))
	}
}

// OverdriveCurve samples the overdrive transfer function at n points.
func OverdriveCurve(drive float64, n int) []float64 {
	curve := make([]float64, n)
	fillCurve(curve, func(x float64) float64 {
		return ((3 + drive) * x * 20 * math.Pi / 180) / (math.Pi + drive*math.Abs(x))
	})

	return curve
}

// DistortionCurve samples the distortion transfer function at n points.
func DistortionCurve(amount float64, n int) []float64 {
	a := 1 + amount
	curve := make([]float64, n)
	fillCurve(curve, func(x float64) float64 {
		y := 1 - math.Exp(-math.Abs(x*a))
		if x < 0 {
			return -y
		}
		return y
	})

	return curve
}

// BuildCurve samples the transfer function of kind at n points.
func BuildCurve(kind CurveKind, drive float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("curve resolution must be >= 2: %d", n)
	}

	if math.IsNaN(drive) || math.IsInf(drive, 0) || drive < 0 {
		return nil, fmt.Errorf("%s drive must be >= 0 and finite: %f", kind, drive)
	}

	switch kind {
	case CurveOverdrive:
		return OverdriveCurve(drive, n), nil
	case CurveDistortion:
		return DistortionCurve(drive, n), nil
	default:
		return nil, fmt.Errorf("unknown curve kind: %d", int(kind))
	}
}

func fillCurve(curve []float64, f func(float64) float64) {
	n := len(curve)
	if n == 1 {
		curve[0] = f(0)
		return
	}

	for i := range curve {
		curve[i] = f(2*float64(i)/float64(n-1) - 1)
	}
}

// CurveCache holds the current transfer curve for one waveshaper stage and
// rebuilds it only when the drive parameter changes.
type CurveCache struct {
	kind       CurveKind
	resolution int
	drive      float64
	curve      []float64
	builds     int
}

// NewCurveCache returns a cache for kind at the default resolution. The
// curve is built lazily on the first Curve call.
func NewCurveCache(kind CurveKind) *CurveCache {
	return &CurveCache{kind: kind, resolution: CurveResolution, drive: math.NaN()}
}

// Curve returns the transfer curve for drive and whether it was rebuilt.
// The returned slice must not be modified.
func (c *CurveCache) Curve(drive float64) ([]float64, bool, error) {
	if c.curve != nil && drive == c.drive {
		return c.curve, false, nil
	}

	curve, err := BuildCurve(c.kind, drive, c.resolution)
	if err != nil {
		return nil, false, err
	}

	c.curve = curve
	c.drive = drive
	c.builds++

	return curve, true, nil
}

// Builds returns the number of times the curve has been computed.
func (c *CurveCache) Builds() int { return c.builds }

// Kind returns the cached curve kind.
func (c *CurveCache) Kind() CurveKind { return c.kind }
