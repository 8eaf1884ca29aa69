// Package session owns the parameter state of one playback session and
// keeps a live effect chain in sync with it.
//
// A Session renders through an audiograph.RealtimeContext, which a
// playback device pulls as an io.Reader. Every state change is applied to
// the live chain with short ramps. Export renders the loaded track with
// the current state through an independent offline graph, so exporting
// never disturbs playback.
package session
