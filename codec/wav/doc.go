// Package wav serializes rendered buffers to 16-bit linear PCM WAV files
// and reads them back.
//
// Samples are clipped to [-1, 1] and scaled asymmetrically: negative
// values by 32768 and positive values by 32767, so both full-scale
// extremes map onto the int16 range exactly.
package wav
