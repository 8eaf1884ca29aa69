// Package spatial provides 8D placement: pattern-driven source positions,
// an auto-rotating orbit, and an equal-power panner that maps a 3D position
// to stereo gains.
//
// The listener sits at the origin facing -Z with +Y up, so a position of
// (0, 0, 1) is directly behind and (1, 0, 0) is hard right.
//
// The package also keeps the mid/side StereoWidener used for binaural width.
package spatial
