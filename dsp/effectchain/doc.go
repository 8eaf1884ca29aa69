// Package effectchain builds the fixed effect graph and keeps it in sync
// with an [state.AudioState].
//
// The chain runs in a fixed order:
//
//	reverb network -> flanger -> tremolo -> overdrive -> distortion ->
//	bit crusher -> muffle -> binaural -> 8D -> bass shelf -> destination
//
// The reverb network mixes a dry gain and four convolution branches into
// the main (volume) gain. Every later stage is a wet/dry pair whose gains
// always sum to one, so enabling or disabling a stage is a crossfade and
// never changes the topology.
//
// A [Builder] owns at most one chain per context and tears the previous one
// down before building again. A [Synchronizer] maps a state snapshot onto
// the chain's parameters inside a single context transaction.
package effectchain
