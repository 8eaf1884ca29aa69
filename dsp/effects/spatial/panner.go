package spatial

import "math"

const (
	refDistance = 1.0
	rolloff     = 1.0
)

var (
	listenerRight = Vec3{X: 1}
	listenerFront = Vec3{Z: -1}
	listenerUp    = Vec3{Y: 1}
)

// Azimuth returns the horizontal angle of pos in degrees, 0 straight ahead,
// +90 hard right, -90 hard left, +-180 behind.
func Azimuth(pos Vec3) float64 {
	src, ok := normalize(pos)
	if !ok {
		return 0
	}

	proj, ok := normalize(sub(src, scale(listenerUp, dot(src, listenerUp))))
	if !ok {
		return 0
	}

	az := math.Acos(clampUnit(dot(proj, listenerRight))) * 180 / math.Pi
	if dot(proj, listenerFront) < 0 {
		az = 360 - az
	}

	if az >= 0 && az <= 270 {
		return 90 - az
	}

	return 450 - az
}

// DistanceGain applies the inverse distance model with reference distance
// and rolloff of 1.
func DistanceGain(pos Vec3) float64 {
	d := math.Max(length(pos), refDistance)
	return refDistance / (refDistance + rolloff*(d-refDistance))
}

// StereoGains holds the equal-power panning gains for a stereo input.
// For azimuth <= 0 the right channel is folded into the left:
//
//	outL = inL + inR*Cross, outR = inR*Direct
//
// and mirrored for azimuth > 0.
type StereoGains struct {
	Left   bool // true when the source pans left (azimuth <= 0)
	Cross  float64
	Direct float64
}

// EqualPowerGains computes stereo panning gains for pos, including the
// distance attenuation in both terms.
func EqualPowerGains(pos Vec3) StereoGains {
	az := math.Max(-180, math.Min(180, Azimuth(pos)))

	// Sources behind the listener fold onto the front hemisphere.
	if az < -90 {
		az = -180 - az
	} else if az > 90 {
		az = 180 - az
	}

	g := DistanceGain(pos)

	if az <= 0 {
		x := (az + 90) / 90
		return StereoGains{Left: true, Cross: g * math.Cos(x*math.Pi/2), Direct: g * math.Sin(x*math.Pi/2)}
	}

	x := az / 90

	return StereoGains{Cross: g * math.Sin(x*math.Pi/2), Direct: g * math.Cos(x*math.Pi/2)}
}

// Apply pans one stereo frame.
func (g StereoGains) Apply(l, r float64) (float64, float64) {
	if g.Left {
		return l + r*g.Cross, r * g.Direct
	}

	return l * g.Direct, r + l*g.Cross
}

// Matrix returns the gains as {ll, rl, lr, rr} where
// outL = ll*inL + rl*inR and outR = lr*inL + rr*inR. Interpolating two
// matrices blends smoothly across the centre line.
func (g StereoGains) Matrix() [4]float64 {
	if g.Left {
		return [4]float64{1, g.Cross, 0, g.Direct}
	}

	return [4]float64{g.Direct, 0, g.Cross, 1}
}

func dot(a, b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func sub(a, b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func scale(a Vec3, s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

func length(a Vec3) float64 { return math.Sqrt(dot(a, a)) }

func normalize(a Vec3) (Vec3, bool) {
	l := length(a)
	if l == 0 || math.IsNaN(l) {
		return Vec3{}, false
	}

	return scale(a, 1/l), true
}

func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
