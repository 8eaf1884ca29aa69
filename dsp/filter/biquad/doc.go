// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Coefficients can be swapped
// between blocks without clearing the delay state, which is how the audio
// graph applies automated cutoff and gain changes.
//
// This package provides the processing runtime only. Coefficient design
// lives in dsp/filter/design.
package biquad
