package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hajimehoshi/oto/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-fx/dsp/render"
	"github.com/cwbudde/algo-fx/dsp/state"
	"github.com/cwbudde/algo-fx/internal/decode"
	"github.com/cwbudde/algo-fx/measure/waveform"
	"github.com/cwbudde/algo-fx/session"
)

const (
	progressLogStep = 10.0
	pollInterval    = 50 * time.Millisecond
)

func runRender(cmd *cobra.Command, _ []string) error {
	if showFields {
		return printFields(cmd)
	}

	st, err := loadState(cmd)
	if err != nil {
		return err
	}

	src, err := decode.Default().DecodeFile(inputPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logrus.WithField("input", inputPath)
	next := 0.0

	res, err := render.Render(ctx, src, st, st.Speed, func(p float64) {
		if p >= next || p == 100 {
			log.WithField("percent", p).Info("rendering")
			next = p + progressLogStep
		}
	}, render.WithChainOptions(env.chainOptions()...))
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, res.WAV, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}

	log.WithFields(logrus.Fields{
		"output":   outputPath,
		"duration": res.Buffer.Duration(),
		"job":      res.JobID,
	}).Info("render written")

	return nil
}

func runWaveform(cmd *cobra.Command, _ []string) error {
	src, err := decode.Default().DecodeFile(inputPath)
	if err != nil {
		return err
	}

	res := <-waveform.SummarizeAsync(cmd.Context(), src, points)
	if res.Err != nil {
		return res.Err
	}

	out := cmd.OutOrStdout()
	for _, v := range res.Peaks {
		fmt.Fprintf(out, "%.4f %s\n", v, strings.Repeat("#", int(v*40+0.5)))
	}

	return nil
}

func runPlay(cmd *cobra.Command, _ []string) error {
	if showFields {
		return printFields(cmd)
	}

	st, err := loadState(cmd)
	if err != nil {
		return err
	}

	src, err := decode.Default().DecodeFile(inputPath)
	if err != nil {
		return err
	}

	sess, err := session.New(src.SampleRate, session.WithChainOptions(env.chainOptions()...))
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.Listeners().OnError(func(err error) {
		logrus.WithError(err).Error("playback error")
	})

	if err := sess.LoadTrack(src); err != nil {
		return err
	}

	if err := sess.Update(func(state.AudioState) state.AudioState { return st }); err != nil {
		return err
	}

	otoCtx, ready, err := oto.NewContext(int(src.SampleRate), session.OutputChannels, oto.FormatFloat32LE)
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(sess.Context())
	defer player.Close()

	if err := sess.Play(); err != nil {
		return err
	}

	player.Play()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return sess.Pause()
		case <-ticker.C:
			if !sess.State().IsPlaying {
				return nil
			}
		}
	}
}

// loadState builds the state from the preset file, the overrides and the
// speed flag, in that order.
func loadState(cmd *cobra.Command) (state.AudioState, error) {
	st := state.Default()

	if presetPath != "" {
		f, err := os.Open(presetPath)
		if err != nil {
			return st, err
		}
		defer f.Close()

		if st, err = state.LoadJSON(f); err != nil {
			return st, fmt.Errorf("%s: %w", presetPath, err)
		}
	}

	sets := overrides
	if cmd.Flags().Changed("speed") {
		sets = append(sets, "speed="+strconv.FormatFloat(speed, 'g', -1, 64))
	}

	return applyOverrides(st, sets)
}

func applyOverrides(st state.AudioState, sets []string) (state.AudioState, error) {
	for _, kv := range sets {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return st, fmt.Errorf("override %q: want name=value", kv)
		}

		var err error
		if st, err = st.Set(strings.TrimSpace(name), value); err != nil {
			return st, err
		}
	}

	return st, nil
}

func printFields(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	for _, name := range state.FieldNames() {
		if r, ok := state.RangeOf(name); ok {
			fmt.Fprintf(out, "%-36s [%g, %g] step %g\n", name, r.Min, r.Max, r.Step)
			continue
		}

		fmt.Fprintln(out, name)
	}

	return nil
}
