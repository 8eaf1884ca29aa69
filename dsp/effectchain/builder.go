package effectchain

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-fx/dsp/audiograph"
	"github.com/cwbudde/algo-fx/dsp/effects"
	"github.com/cwbudde/algo-fx/dsp/effects/modulation"
	"github.com/cwbudde/algo-fx/dsp/effects/reverb"
	"github.com/cwbudde/algo-fx/dsp/effects/spatial"
	"github.com/cwbudde/algo-fx/internal/worklet"
)

const bassShelfHz = 250.0

// ErrGraphTornDown is returned when a torn-down chain is used.
var ErrGraphTornDown = errors.New("effectchain: graph torn down")

// Chain is one built effect graph. Connect sources to Input.
type Chain struct {
	Input audiograph.NodeID

	Reverb     *ReverbNetwork
	Flanger    *FlangerStage
	Tremolo    *TremoloStage
	Overdrive  *DriveStage
	Distortion *DriveStage
	Crusher    *CrusherStage
	Muffle     *MuffleStage
	Binaural   *BinauralStage
	EightD     *EightDStage
	Bass       *BassStage

	nodes []audiograph.NodeID
	hosts []*worklet.Host
	torn  bool
}

// Effects returns the wet/dry stages in processing order.
func (c *Chain) Effects() []Effect {
	return []Effect{
		c.Flanger, c.Tremolo, c.Overdrive, c.Distortion, c.Crusher,
		c.Muffle, c.Binaural, c.EightD, c.Bass,
	}
}

// TornDown reports whether the chain has been removed from its graph.
func (c *Chain) TornDown() bool { return c.torn }

// Nodes returns the number of graph nodes the chain owns.
func (c *Chain) Nodes() int { return len(c.nodes) }

// Builder constructs the effect chain inside one context.
type Builder struct {
	ctx   audiograph.Context
	cfg   config
	chain *Chain
}

// NewBuilder returns a builder for ctx.
func NewBuilder(ctx audiograph.Context, opts ...Option) (*Builder, error) {
	if ctx == nil {
		return nil, errors.New("effectchain: nil context")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.library == nil {
		cfg.library = reverb.NewLibrary(cfg.seed)
	}

	return &Builder{ctx: ctx, cfg: cfg}, nil
}

// Context returns the processing context.
func (b *Builder) Context() audiograph.Context { return b.ctx }

// Logger returns the configured logger.
func (b *Builder) Logger() logrus.FieldLogger { return b.cfg.log }

// Build tears down the previous chain, if any, and builds a new one.
// Stages that fail to construct pass audio through and are logged.
func (b *Builder) Build() (*Chain, error) {
	var chain *Chain

	err := b.ctx.Do(func(g *audiograph.Graph) error {
		b.teardown(g)

		c, err := b.build(g)
		if err != nil {
			b.chain = c
			b.teardown(g)

			return err
		}

		b.chain = c
		chain = c

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("effectchain: build: %w", err)
	}

	return chain, nil
}

// Teardown removes the current chain from the graph and stops its
// workers. It is a no-op without a chain.
func (b *Builder) Teardown() error {
	err := b.ctx.Do(func(g *audiograph.Graph) error {
		b.teardown(g)
		return nil
	})
	if errors.Is(err, audiograph.ErrContextClosed) {
		return nil
	}

	return err
}

// Current returns the built chain or nil. Read it inside the context's Do
// when rendering may be running.
func (b *Builder) Current() *Chain { return b.chain }

func (b *Builder) teardown(g *audiograph.Graph) {
	c := b.chain
	if c == nil {
		return
	}

	for _, id := range c.nodes {
		g.Remove(id)
	}

	for _, h := range c.hosts {
		_ = h.Close()
	}

	c.nodes = nil
	c.hosts = nil
	c.torn = true
	b.chain = nil
}

// graphBuilder records every node it adds so teardown can remove them.
type graphBuilder struct {
	g     *audiograph.Graph
	chain *Chain
	err   error
}

func (gb *graphBuilder) add(p audiograph.Processor) audiograph.NodeID {
	id := gb.g.Add(p)
	gb.chain.nodes = append(gb.chain.nodes, id)

	return id
}

func (gb *graphBuilder) connect(ids ...audiograph.NodeID) {
	if gb.err != nil {
		return
	}

	gb.err = gb.g.Chain(ids...)
}

func (b *Builder) build(g *audiograph.Graph) (*Chain, error) {
	c := &Chain{}
	gb := &graphBuilder{g: g, chain: c}
	sr := g.SampleRate()

	c.Input = gb.add(audiograph.Passthrough{})
	c.Reverb = b.buildReverb(gb, sr)

	c.Flanger = b.buildFlanger(gb, sr)
	c.Tremolo = b.buildTremolo(gb, sr)
	c.Overdrive = b.buildDrive(gb, "overdrive", effects.CurveOverdrive, sr)
	c.Distortion = b.buildDrive(gb, "distortion", effects.CurveDistortion, sr)
	c.Crusher = b.buildCrusher(gb, c, sr)
	c.Muffle = b.buildMuffle(gb, sr)
	c.Binaural = b.buildBinaural(gb)
	c.EightD = b.buildEightD(gb)
	c.Bass = b.buildBass(gb, sr)

	prev := c.Reverb.mainID
	for _, e := range c.Effects() {
		p := e.base()
		gb.connect(prev, p.in)
		prev = p.out
	}

	gb.connect(prev, g.Destination())

	return c, gb.err
}

// newPair wires in -> dry -> out and in -> wet path -> wet gain -> out.
// On a construction error the wet path is a passthrough and the stage is
// marked degraded.
func (b *Builder) newPair(gb *graphBuilder, name string, buildErr error, wetPath ...audiograph.Processor) *pair {
	return b.newPairWithPost(gb, name, buildErr, wetPath, nil)
}

// newPairWithPost is newPair with extra processors between the wet gain
// and the stage output.
func (b *Builder) newPairWithPost(
	gb *graphBuilder,
	name string,
	buildErr error,
	wetPath []audiograph.Processor,
	post []audiograph.Processor,
) *pair {
	p := &pair{
		name: name,
		dry:  audiograph.NewGain(1),
		wet:  audiograph.NewGain(0),
	}

	if buildErr != nil {
		b.cfg.log.WithFields(logrus.Fields{
			"stage": name,
		}).WithError(buildErr).Warn("effect stage degraded to passthrough")

		p.degraded = true
		wetPath = []audiograph.Processor{audiograph.Passthrough{}}
	}

	p.in = gb.add(audiograph.Passthrough{})
	p.out = gb.add(audiograph.Passthrough{})

	gb.connect(p.in, gb.add(p.dry), p.out)

	ids := []audiograph.NodeID{p.in}
	for _, proc := range wetPath {
		ids = append(ids, gb.add(proc))
	}

	ids = append(ids, gb.add(p.wet))
	for _, proc := range post {
		ids = append(ids, gb.add(proc))
	}

	gb.connect(append(ids, p.out)...)

	return p
}

func (b *Builder) buildReverb(gb *graphBuilder, sr float64) *ReverbNetwork {
	net := &ReverbNetwork{
		Dry:  audiograph.NewGain(1),
		Main: audiograph.NewGain(1),
	}

	mainID := gb.add(net.Main)
	net.mainID = mainID
	gb.connect(gb.chain.Input, gb.add(net.Dry), mainID)

	for i, t := range reverb.Types {
		branch := &ReverbBranch{Conv: audiograph.NewConvolver(), Gain: audiograph.NewGain(0)}

		ir, err := b.cfg.library.Impulse(t, sr)
		if err == nil {
			err = branch.Conv.SetImpulse(ir)
		}

		if err != nil {
			b.cfg.log.WithFields(logrus.Fields{
				"reverbType": t.String(),
			}).WithError(err).Warn("reverb branch left silent")
		}

		gb.connect(gb.chain.Input, gb.add(branch.Conv), gb.add(branch.Gain), mainID)
		net.Branches[i] = branch
	}

	return net
}

func (b *Builder) buildFlanger(gb *graphBuilder, sr float64) *FlangerStage {
	s := &FlangerStage{}

	var err error
	for ch := range s.units {
		if s.units[ch], err = modulation.NewFlanger(sr); err != nil {
			break
		}
	}

	s.pair = b.newPair(gb, "flanger", err, audiograph.NewFunc(s.process))

	return s
}

func (b *Builder) buildTremolo(gb *graphBuilder, sr float64) *TremoloStage {
	s := &TremoloStage{}

	var err error
	s.trem, err = modulation.NewTremolo(sr)
	s.pair = b.newPair(gb, "tremolo", err, audiograph.NewFunc(s.process))

	return s
}

func (b *Builder) buildDrive(gb *graphBuilder, name string, kind effects.CurveKind, sr float64) *DriveStage {
	s := &DriveStage{
		curves: effects.NewCurveCache(kind),
		shaper: audiograph.NewWaveShaper(),
		tone:   audiograph.NewOnePole(effects.ToneCutoffHz(50), sr),
		level:  audiograph.NewGain(1),
	}

	s.pair = b.newPair(gb, name, nil, s.shaper, s.tone, s.level)

	return s
}

func (b *Builder) buildCrusher(gb *graphBuilder, c *Chain, sr float64) *CrusherStage {
	s := &CrusherStage{params: effects.CrusherParams{Bits: 8, TargetRate: 22050}}

	logged := false
	s.failure = func(err error) {
		if logged {
			return
		}

		logged = true
		b.cfg.log.WithFields(logrus.Fields{
			"stage": "bitcrusher",
			"mode":  b.cfg.crusherMode.String(),
		}).WithError(err).Warn("bit crusher passing audio through")
	}

	var err error

	switch b.cfg.crusherMode {
	case CrusherWorklet:
		s.host, err = worklet.Start(sr, b.cfg.log)
		if err == nil {
			c.hosts = append(c.hosts, s.host)
		}
	default:
		s.inline, err = effects.NewBitCrusher(sr)
	}

	s.pair = b.newPair(gb, "bitcrusher", err, audiograph.NewFunc(s.process))

	return s
}

func (b *Builder) buildMuffle(gb *graphBuilder, sr float64) *MuffleStage {
	s := &MuffleStage{filter: audiograph.NewBiquad(audiograph.FilterLowpass, sr)}
	s.filter.Frequency.SetValue(effects.MuffleCutoffHz(0))
	s.filter.Q.SetValue(effects.MuffleResonanceDB)

	s.pair = b.newPair(gb, "muffle", nil, s.filter)

	return s
}

func (b *Builder) buildBinaural(gb *graphBuilder) *BinauralStage {
	s := &BinauralStage{conv: audiograph.NewConvolver(), width: audiograph.NewGain(1)}

	// The wet gain follows the convolver directly so a disabled room idles.
	s.pair = b.newPairWithPost(gb, "binaural", nil,
		[]audiograph.Processor{s.conv}, []audiograph.Processor{s.width})

	return s
}

func (b *Builder) buildEightD(gb *graphBuilder) *EightDStage {
	s := &EightDStage{orbit: spatial.NewOrbit(), panner: audiograph.NewPanner()}
	s.panner.SetMover(s.orbit)

	s.pair = b.newPair(gb, "8d", nil, s.panner)

	return s
}

func (b *Builder) buildBass(gb *graphBuilder, sr float64) *BassStage {
	s := &BassStage{shelf: audiograph.NewBiquad(audiograph.FilterLowShelf, sr)}
	s.shelf.Frequency.SetValue(bassShelfHz)

	s.pair = b.newPair(gb, "bass", nil, s.shelf)

	return s
}
