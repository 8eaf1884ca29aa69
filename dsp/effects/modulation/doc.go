// Package modulation provides reusable non-I/O modulation effects.
//
// Included processors:
//   - LFO: Low-frequency oscillator with sine, square, triangle and sawtooth shapes.
//   - Flanger: Short LFO-modulated delay with internal feedback and a fixed
//     inner wet/dry blend.
//   - Tremolo: LFO amplitude modulation that never reaches total silence.
package modulation
