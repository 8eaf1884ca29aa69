// Package reverb synthesizes procedural impulse responses and convolves
// signals with them.
//
// Two impulse families are provided:
//   - Type impulses: stereo noise decays with fixed duration/decay pairs per
//     reverb type (default, hall, room, plate).
//   - Binaural impulses: early reflections plus a diffuse tail whose size and
//     damping follow room parameters, with a delayed, smoothed second channel
//     for width.
//
// Synthesis is seeded, so the same parameters always produce the same
// buffer. [BinauralCache] and [Library] avoid recomputing impulses whose
// generating parameters have not changed.
package reverb
