// Package waveform reduces a buffer to a short amplitude envelope for
// display.
//
// The envelope is the block-average absolute amplitude of the mono
// downmix, normalized so its largest point is 1. Silent input yields an
// all-zero envelope.
package waveform
