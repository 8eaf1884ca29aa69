// Package interp provides interpolation primitives used by delay-based and
// table-lookup DSP blocks.
//
// Available methods, from cheapest to highest quality:
//
//   - [Linear2]:  2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite (good default)
//
// The [Mode] enum and the delay.Line type allow selecting the
// interpolation algorithm at construction time.
package interp
