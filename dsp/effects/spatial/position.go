package spatial

import (
	"fmt"
	"math"
	"strings"
)

// Vec3 is a position in listener space.
type Vec3 struct {
	X, Y, Z float64
}

// Pattern selects the path traced as the angle advances.
type Pattern int

const (
	// PatternCircle orbits the listener: (sin t, 0, cos t).
	PatternCircle Pattern = iota
	// PatternPingPong swings left/right at a fixed depth: (sin t, 0, 0.5).
	PatternPingPong
	// PatternFigure8 traces a lemniscate: (sin t, 0, 0.5 sin 2t).
	PatternFigure8
	// PatternRandom traces a Lissajous curve: (sin t, 0, cos 0.7t).
	PatternRandom
)

var patternNames = map[Pattern]string{
	PatternCircle:   "circle",
	PatternPingPong: "pingpong",
	PatternFigure8:  "figure8",
	PatternRandom:   "random",
}

// String returns the pattern name.
func (p Pattern) String() string {
	if name, ok := patternNames[p]; ok {
		return name
	}

	return fmt.Sprintf("pattern(%d)", int(p))
}

// ParsePattern maps a name such as "figure8" to a Pattern.
func ParsePattern(name string) (Pattern, error) {
	for p, n := range patternNames {
		if strings.EqualFold(n, name) {
			return p, nil
		}
	}

	return PatternCircle, fmt.Errorf("spatial: unknown pattern %q", name)
}

// Position maps an angle in degrees to a point on pattern's path.
func Position(pattern Pattern, angleDeg float64) Vec3 {
	theta := angleDeg * math.Pi / 180
	x := math.Sin(theta)

	switch pattern {
	case PatternPingPong:
		return Vec3{X: x, Z: 0.5}
	case PatternFigure8:
		return Vec3{X: x, Z: 0.5 * math.Sin(2*theta)}
	case PatternRandom:
		return Vec3{X: x, Z: math.Cos(0.7 * theta)}
	default:
		return Vec3{X: x, Z: math.Cos(theta)}
	}
}

// WrapDegrees folds an angle into [0, 360).
func WrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}

	return deg
}
