// Package audiograph is a small block-based audio graph runtime.
//
// A [Graph] is an arena of nodes addressed by [NodeID]. Edges form a DAG and
// are evaluated in topological order once per render quantum of
// [core.RenderQuantum] frames. Every connection carries a stereo [Block];
// a node's input is the sum of all of its parents.
//
// Parameters are [Param] automation timelines evaluated per sample, so a
// linear ramp scheduled on the live context produces exactly the same
// samples as the same ramp scheduled on an offline context.
//
// Two contexts drive a graph: [OfflineContext] renders a fixed number of
// frames as fast as possible, [RealtimeContext] renders on demand as a
// playback device pulls bytes. Both serialize graph edits and parameter
// writes against rendering through Do.
package audiograph
