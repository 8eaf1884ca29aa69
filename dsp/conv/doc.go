// Package conv provides convolution routines for long impulse responses.
//
//   - [Direct]: time-domain linear convolution, used for short kernels and
//     as a reference.
//   - [Partitioned]: uniformly partitioned overlap-save convolution that
//     processes fixed-size blocks with no latency beyond the block itself.
//     It is the engine behind the graph convolver used for reverb.
//
// A [Partitioned] convolver keeps a frequency-domain delay line of past
// input spectra. [Partitioned.Idle] feeds a block into that history without
// producing output, so a convolver whose output is muted keeps an exact
// reverb tail for when it is unmuted.
package conv
