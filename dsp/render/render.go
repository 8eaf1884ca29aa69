package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-fx/codec/wav"
	"github.com/cwbudde/algo-fx/dsp/audiograph"
	"github.com/cwbudde/algo-fx/dsp/effectchain"
	"github.com/cwbudde/algo-fx/dsp/state"
)

const (
	// ProgressCeiling is the highest percentage reported before the
	// encoded file exists.
	ProgressCeiling = 95.0

	doneProgress = 100.0
)

var (
	// ErrRenderFailed wraps every render failure.
	ErrRenderFailed = errors.New("render: failed")
	// ErrInvalidSpeed is returned for speeds outside state.SpeedRange.
	ErrInvalidSpeed = errors.New("render: invalid speed")
)

// ProgressFunc receives a percentage in [0, 100]. Calls are monotonic in
// integer steps and the last call reports 100.
type ProgressFunc func(percent float64)

// Result is a finished render.
type Result struct {
	JobID  string
	Buffer *audiograph.Buffer
	WAV    []byte
	Err    error
}

// Render applies st to source at the given playback speed and returns the
// rendered buffer and its WAV encoding. The output has the source's
// channel count and sample rate and ceil(len/speed) frames. ctx is
// checked between render quanta. progress may be nil.
func Render(
	ctx context.Context,
	source *audiograph.Buffer,
	st state.AudioState,
	speed float64,
	progress ProgressFunc,
	opts ...Option,
) (*Result, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	r := &job{
		id:       uuid.NewString(),
		cfg:      cfg,
		progress: progress,
		last:     -1,
	}

	return r.run(ctx, source, st, speed)
}

// RenderAsync runs Render on a new goroutine. The channel receives one
// Result, with Err set on failure, and is then closed.
func RenderAsync(
	ctx context.Context,
	source *audiograph.Buffer,
	st state.AudioState,
	speed float64,
	progress ProgressFunc,
	opts ...Option,
) <-chan Result {
	out := make(chan Result, 1)

	go func() {
		defer close(out)

		res, err := Render(ctx, source, st, speed, progress, opts...)
		if err != nil {
			out <- Result{Err: err}
			return
		}

		out <- *res
	}()

	return out
}

// FrameCount returns the rendered length of frames source frames played
// at speed.
func FrameCount(frames int, speed float64) int {
	return int(math.Ceil(float64(frames) / speed))
}

type job struct {
	id       string
	cfg      config
	log      logrus.FieldLogger
	progress ProgressFunc
	last     float64
}

func (j *job) run(ctx context.Context, source *audiograph.Buffer, st state.AudioState, speed float64) (res *Result, err error) {
	j.log = j.cfg.log.WithFields(logrus.Fields{
		"job":   j.id,
		"speed": speed,
	})

	defer func() {
		if r := recover(); r != nil {
			j.log.WithField("panic", r).Error("render panicked")
			res, err = nil, fmt.Errorf("%w: panic: %v", ErrRenderFailed, r)
		}
	}()

	if !state.SpeedRange.Contains(speed) || math.IsNaN(speed) {
		return nil, fmt.Errorf("%w: %w: %g", ErrRenderFailed, ErrInvalidSpeed, speed)
	}

	if err := source.Validate(); err != nil {
		return nil, fmt.Errorf("%w: source: %w", ErrRenderFailed, err)
	}

	started := time.Now()
	j.report(0)

	buf, err := j.renderBuffer(ctx, source, st, speed)
	if err != nil {
		j.log.WithError(err).Warn("render aborted")
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	data, err := wav.Encode(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	j.report(doneProgress)
	j.log.WithFields(logrus.Fields{
		"frames":  buf.Len(),
		"bytes":   len(data),
		"elapsed": time.Since(started).String(),
	}).Info("render finished")

	return &Result{JobID: j.id, Buffer: buf, WAV: data}, nil
}

func (j *job) renderBuffer(ctx context.Context, source *audiograph.Buffer, st state.AudioState, speed float64) (*audiograph.Buffer, error) {
	length := FrameCount(source.Len(), speed)

	octx, err := audiograph.NewOfflineContext(source.NumChannels(), length, source.SampleRate)
	if err != nil {
		return nil, err
	}

	chainOpts := append([]effectchain.Option{}, j.cfg.chainOpts...)
	chainOpts = append(chainOpts, effectchain.WithLogger(j.log))

	builder, err := effectchain.NewBuilder(octx, chainOpts...)
	if err != nil {
		return nil, err
	}

	chain, err := builder.Build()
	if err != nil {
		return nil, err
	}
	defer builder.Teardown()

	if err := effectchain.NewSynchronizer(builder).ApplyState(st, true); err != nil {
		return nil, err
	}

	err = octx.Do(func(g *audiograph.Graph) error {
		src := audiograph.NewBufferSource(source, g.SampleRate())
		src.PlaybackRate.SetValue(speed)

		if err := src.Start(0, 0); err != nil {
			return err
		}

		return g.Connect(g.Add(src), chain.Input)
	})
	if err != nil {
		return nil, err
	}

	j.log.WithFields(logrus.Fields{
		"frames":     length,
		"channels":   source.NumChannels(),
		"sampleRate": source.SampleRate,
	}).Info("render started")

	return octx.StartRendering(ctx, func(done, total int) {
		j.report(math.Floor(float64(done) / float64(total) * ProgressCeiling))
	})
}

// report forwards integer percentages that moved forward.
func (j *job) report(pct float64) {
	if j.progress == nil || pct <= j.last {
		return
	}

	j.last = pct
	j.progress(pct)
}
