// Package design provides digital IIR filter coefficient designers.
//
// The functions in this package produce biquad coefficients consumable by
// dsp/filter/biquad for runtime processing: RBJ lowpass and low-shelf
// sections, a lowpass whose resonance is given in dB the way browser audio
// engines interpret it, and a one-pole lowpass packed into a biquad.
//
// Frequencies at or above Nyquist yield a passthrough section rather than
// an unstable or silent one, so parameter sweeps may cross Nyquist safely.
package design
