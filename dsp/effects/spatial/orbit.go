package spatial

import (
	"fmt"
	"math"
)

const (
	minRotationSpeed = 0.1
	maxRotationSpeed = 2.0
)

// Orbit drives an 8D source position. With auto-rotation on, every Advance
// moves the angle by speed*360*dt degrees (one turn per second at 1x);
// otherwise the manual angle is used unchanged.
//
// Orbit is not safe for concurrent use; the graph serializes access.
type Orbit struct {
	pattern    Pattern
	autoRotate bool
	speed      float64
	manual     float64
	angle      float64
}

// NewOrbit returns an auto-rotating circle at 0.5x starting at 0 degrees.
func NewOrbit() *Orbit {
	return &Orbit{pattern: PatternCircle, autoRotate: true, speed: 0.5}
}

// SetPattern selects the path.
func (o *Orbit) SetPattern(p Pattern) { o.pattern = p }

// SetAutoRotate toggles auto-rotation. Turning it on continues from the
// manual angle.
func (o *Orbit) SetAutoRotate(on bool) {
	if on && !o.autoRotate {
		o.angle = o.manual
	}

	o.autoRotate = on
}

// SetSpeed sets the rotation speed multiplier within [0.1, 2].
func (o *Orbit) SetSpeed(speed float64) error {
	if speed < minRotationSpeed || speed > maxRotationSpeed || math.IsNaN(speed) {
		return fmt.Errorf("rotation speed must be in [%g, %g]: %f", minRotationSpeed, maxRotationSpeed, speed)
	}

	o.speed = speed

	return nil
}

// SetManualAngle sets the angle used while auto-rotation is off.
func (o *Orbit) SetManualAngle(deg float64) error {
	if deg < 0 || deg > 360 || math.IsNaN(deg) {
		return fmt.Errorf("manual position must be in [0, 360]: %f", deg)
	}

	o.manual = deg

	return nil
}

// Angle returns the angle that the next Advance will start from.
func (o *Orbit) Angle() float64 {
	if o.autoRotate {
		return o.angle
	}

	return o.manual
}

// Advance returns the position for the current angle, then moves the
// angle forward by dt seconds of rotation.
func (o *Orbit) Advance(dt float64) Vec3 {
	if !o.autoRotate {
		return Position(o.pattern, o.manual)
	}

	pos := Position(o.pattern, o.angle)
	o.angle = WrapDegrees(o.angle + o.speed*360*dt)

	return pos
}
