// Package state holds the effect parameter snapshot shared by live
// playback and export.
//
// [AudioState] is a plain value. Copies are independent, so a snapshot
// handed to a renderer cannot change underneath it. Every numeric field
// has a declared [Range]; [AudioState.Normalize] clamps into those ranges
// and [AudioState.Validate] reports the first violation as a *RangeError.
package state
