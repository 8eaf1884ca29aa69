// Package effects provides the block kernels and parameter mappings shared
// by the effect graph that are not tied to a single subpackage.
//
// Subpackages:
//   - github.com/cwbudde/algo-fx/dsp/effects/modulation: LFO, tremolo, flanger
//   - github.com/cwbudde/algo-fx/dsp/effects/reverb: impulse synthesis, convolution, binaural
//   - github.com/cwbudde/algo-fx/dsp/effects/spatial: equal-power panner and orbit paths
//
// Contents of this package:
//   - BitCrusher: sample-and-hold rate reduction with step quantization.
//   - CurveCache, BuildCurve: overdrive and distortion transfer tables for
//     the waveshaper node, rebuilt only when the drive changes.
//   - MuffleCutoffHz, ToneCutoffHz, LevelGain: percent-to-filter mappings.
package effects
