package effects

import "github.com/cwbudde/algo-fx/dsp/core"

const (
	// MuffleResonanceDB is the fixed resonance of the muffle lowpass.
	MuffleResonanceDB = 1.2

	muffleOpenHz   = 12000.0
	muffleClosedHz = 400.0

	toneBaseHz  = 1000.0
	toneSpanHz  = 4000.0
	percentFull = 100.0
)

// MuffleCutoffHz maps a muffle intensity in percent to a lowpass cutoff:
// 0% leaves the filter open at 12 kHz, 100% closes it to 400 Hz.
func MuffleCutoffHz(intensity float64) float64 {
	i := core.Clamp(intensity, 0, percentFull) / percentFull
	return muffleOpenHz - i*(muffleOpenHz-muffleClosedHz)
}

// ToneCutoffHz maps a drive-stage tone control in percent to the cutoff of
// its one-pole lowpass, spanning 1 kHz to 5 kHz.
func ToneCutoffHz(tone float64) float64 {
	return toneBaseHz + core.Clamp(tone, 0, percentFull)/percentFull*toneSpanHz
}

// LevelGain maps an output level in percent to a linear gain.
func LevelGain(level float64) float64 {
	return core.Clamp(level, 0, percentFull) / percentFull
}
