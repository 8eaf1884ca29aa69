package waveform

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-fx/dsp/audiograph"
)

// DefaultPoints is the envelope length used when points is 0.
const DefaultPoints = 200

// ErrInvalidPoints is returned for a negative point count.
var ErrInvalidPoints = errors.New("waveform: point count must be >= 0")

// Result carries the outcome of SummarizeAsync.
type Result struct {
	Peaks []float64
	Err   error
}

// Summarize returns points block averages of |x| over the mono downmix of
// buf, normalized to a maximum of 1. Blocks are contiguous and cover the
// whole buffer; with fewer frames than points some blocks are empty and
// read as 0.
func Summarize(buf *audiograph.Buffer, points int) ([]float64, error) {
	if points < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPoints, points)
	}

	if points == 0 {
		points = DefaultPoints
	}

	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("waveform: %w", err)
	}

	mono := downmix(buf)
	peaks := make([]float64, points)
	n := len(mono)

	for i := range peaks {
		start := i * n / points
		end := (i + 1) * n / points

		if end <= start {
			continue
		}

		sum := 0.0
		for _, v := range mono[start:end] {
			sum += math.Abs(v)
		}

		peaks[i] = sum / float64(end-start)
	}

	if peak := floats.Max(peaks); peak > 0 {
		floats.Scale(1/peak, peaks)
	}

	return peaks, nil
}

// SummarizeAsync runs Summarize on a new goroutine. The channel receives
// exactly one Result and is then closed. A cancelled ctx yields ctx.Err().
func SummarizeAsync(ctx context.Context, buf *audiograph.Buffer, points int) <-chan Result {
	out := make(chan Result, 1)

	go func() {
		defer close(out)

		if err := ctx.Err(); err != nil {
			out <- Result{Err: err}
			return
		}

		peaks, err := Summarize(buf, points)
		if err == nil {
			err = ctx.Err()
		}

		if err != nil {
			out <- Result{Err: err}
			return
		}

		out <- Result{Peaks: peaks}
	}()

	return out
}

func downmix(buf *audiograph.Buffer) []float64 {
	if buf.NumChannels() == 1 {
		return buf.Channels[0]
	}

	mono := make([]float64, buf.Len())
	for _, ch := range buf.Channels {
		floats.Add(mono, ch)
	}

	floats.Scale(1/float64(buf.NumChannels()), mono)

	return mono
}
