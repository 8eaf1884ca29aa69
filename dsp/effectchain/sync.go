package effectchain

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-fx/dsp/audiograph"
	"github.com/cwbudde/algo-fx/dsp/effects"
	"github.com/cwbudde/algo-fx/dsp/effects/reverb"
	"github.com/cwbudde/algo-fx/dsp/state"
)

const (
	percent    = 100.0
	bassDBStep = 5.0
	msPerSec   = 1000.0
)

// Synchronizer applies state snapshots to the chain of one Builder.
type Synchronizer struct {
	builder  *Builder
	binaural *reverb.BinauralCache
}

// NewSynchronizer returns a synchronizer for b's chains.
func NewSynchronizer(b *Builder) *Synchronizer {
	return &Synchronizer{
		builder:  b,
		binaural: reverb.NewBinauralCache(b.ctx.SampleRate(), b.cfg.seed),
	}
}

// BinauralBuilds returns how many binaural impulses have been synthesized.
func (s *Synchronizer) BinauralBuilds() int { return s.binaural.Builds() }

// ApplyState maps st onto the current chain. With immediate set every
// change lands at the current context time; otherwise parameters ramp
// linearly over the configured ramp time. The snapshot is applied in one
// context transaction. Without a built chain, or after teardown, it does
// nothing.
func (s *Synchronizer) ApplyState(st state.AudioState, immediate bool) error {
	st = st.Normalize()

	ramp := s.builder.cfg.rampTime
	if immediate {
		ramp = 0
	}

	err := s.builder.ctx.Do(func(g *audiograph.Graph) error {
		c := s.builder.chain
		if c == nil || c.torn {
			return nil
		}

		a := applier{now: g.CurrentTime(), ramp: ramp, log: s.builder.cfg.log}

		a.reverb(c.Reverb, st)
		a.flanger(c.Flanger, st.Modulation.Flanger)
		a.tremolo(c.Tremolo, st)
		a.drive(c.Overdrive, st.Distortion.Overdrive)
		a.drive(c.Distortion, st.Distortion.Distortion)
		a.crusher(c.Crusher, st.Distortion.Bitcrusher)
		a.muffle(c.Muffle, st.Tone.Muffle)
		a.binaural(c.Binaural, st.Spatial.Binaural, s.binaural)
		a.eightD(c.EightD, st)
		a.bass(c.Bass, st.Bass)

		return nil
	})
	if errors.Is(err, audiograph.ErrContextClosed) {
		return nil
	}

	return err
}

// applier carries one transaction's timing.
type applier struct {
	now  float64
	ramp float64
	log  logrus.FieldLogger
}

func (a applier) rampTo(p *audiograph.Param, v float64) {
	p.RampTo(v, a.now, a.ramp)
}

func (a applier) reverb(net *ReverbNetwork, st state.AudioState) {
	amount := st.Reverb / percent
	kind := st.ReverbKind()

	if st.EtherealEcho {
		a.rampTo(net.Dry.Gain, 1)
	} else {
		a.rampTo(net.Dry.Gain, 1-amount)
	}

	for i, t := range reverb.Types {
		g := 0.0

		switch {
		case st.EtherealEcho:
			g = 1
		case t == kind:
			g = amount
		}

		a.rampTo(net.Branches[i].Gain.Gain, g)
	}

	a.rampTo(net.Main.Gain, st.Volume/percent)
}

func (a applier) flanger(s *FlangerStage, fs state.FlangerSettings) {
	if !s.degraded {
		for _, f := range s.units {
			a.check(s, f.SetRateHz(fs.Rate))
			a.check(s, f.SetDepth(fs.Depth/percent))
			a.check(s, f.SetFeedback(fs.Feedback/percent))
			a.check(s, f.SetDelaySeconds(fs.Delay/msPerSec))
		}
	}

	s.setEnabled(fs.Enabled, a.now, a.ramp)
}

func (a applier) tremolo(s *TremoloStage, st state.AudioState) {
	ts := st.Modulation.Tremolo

	if !s.degraded {
		a.check(s, s.trem.SetRateHz(ts.Rate))
		a.check(s, s.trem.SetDepth(ts.Depth/percent))
		s.trem.SetWaveform(st.TremoloShape())
	}

	s.setEnabled(ts.Enabled, a.now, a.ramp)
}

func (a applier) drive(s *DriveStage, ds state.DriveSettings) {
	curve, rebuilt, err := s.curves.Curve(ds.Drive)
	if a.check(s, err) && rebuilt {
		s.shaper.SetCurve(curve)
	}

	a.rampTo(s.tone.Cutoff, effects.ToneCutoffHz(ds.Tone))
	a.rampTo(s.level.Gain, effects.LevelGain(ds.Level))

	s.setEnabled(ds.Enabled, a.now, a.ramp)
}

func (a applier) crusher(s *CrusherStage, cs state.BitcrusherSettings) {
	params := effects.CrusherParams{Bits: int(cs.Bits), TargetRate: cs.SampleRate}
	if a.check(s, params.Validate()) {
		s.params = params
	}

	s.setEnabled(cs.Enabled, a.now, a.ramp)
}

func (a applier) muffle(s *MuffleStage, ms state.MuffleSettings) {
	a.rampTo(s.filter.Frequency, effects.MuffleCutoffHz(ms.Intensity))
	s.filter.Q.SetValue(effects.MuffleResonanceDB)

	s.setEnabled(ms.Enabled, a.now, a.ramp)
}

func (a applier) binaural(s *BinauralStage, bs state.BinauralSettings, cache *reverb.BinauralCache) {
	ir, rebuilt, err := cache.Impulse(reverb.BinauralParams{RoomSize: bs.RoomSize, Damping: bs.Damping})
	if rebuilt {
		a.log.WithFields(logrus.Fields{
			"roomSize": bs.RoomSize,
			"damping":  bs.Damping,
			"frames":   ir.Len(),
		}).Debug("binaural impulse regenerated")
	}

	if a.check(s, err) && ir != s.conv.Impulse() {
		a.check(s, s.conv.SetImpulse(ir))
	}

	a.rampTo(s.width.Gain, bs.Width/percent)

	s.setEnabled(bs.Enabled, a.now, a.ramp)
}

func (a applier) eightD(s *EightDStage, st state.AudioState) {
	es := st.Spatial.EightD

	s.orbit.SetPattern(st.EightDPattern())
	s.orbit.SetAutoRotate(es.AutoRotate)
	a.check(s, s.orbit.SetSpeed(es.RotationSpeed))
	a.check(s, s.orbit.SetManualAngle(es.ManualPosition))

	s.setEnabled(es.Enabled, a.now, a.ramp)
}

func (a applier) bass(s *BassStage, bass float64) {
	a.rampTo(s.shelf.Gain, bass/bassDBStep)
	s.setEnabled(true, a.now, a.ramp)
}

// check logs err against stage e and reports whether it was nil.
func (a applier) check(e Effect, err error) bool {
	if err == nil {
		return true
	}

	a.log.WithFields(logrus.Fields{
		"stage": e.Name(),
	}).WithError(err).Warn("effect parameter rejected")

	return false
}
