// Package render produces an exportable copy of a source buffer with the
// effect chain applied.
//
// Every render builds its own offline context and effect chain with the
// same builder and synchronizer used for live playback, so an export
// never shares nodes with a playing graph and may run while it plays.
// Given the same seed and state the output is identical to what the live
// chain produces.
package render
