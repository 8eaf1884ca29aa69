// Package worklet runs the bit crusher kernel on a dedicated goroutine,
// exchanging one block and one parameter snapshot per message.
package worklet

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-fx/dsp/effects"
)

// ErrClosed is returned by Process after Close.
var ErrClosed = errors.New("worklet: host closed")

type request struct {
	block  [][]float64
	params effects.CrusherParams
	reply  chan error
}

// Host owns a BitCrusher on its own goroutine. Process sends the worker a
// copy of the block and waits for it to come back, so the worker never
// touches caller memory and results are identical to running the kernel
// inline.
type Host struct {
	requests chan request
	done     chan struct{}
	once     sync.Once
	log      logrus.FieldLogger
}

// Start launches a worker for signals at sampleRate.
func Start(sampleRate float64, log logrus.FieldLogger) (*Host, error) {
	crusher, err := effects.NewBitCrusher(sampleRate)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	h := &Host{
		requests: make(chan request),
		done:     make(chan struct{}),
		log:      log,
	}

	go h.run(crusher)

	return h, nil
}

func (h *Host) run(crusher *effects.BitCrusher) {
	for {
		select {
		case req := <-h.requests:
			req.reply <- crusher.ProcessBlock(req.block, req.params)
		case <-h.done:
			return
		}
	}
}

// Process crushes block in place on the worker. After Close, or when
// params are invalid, block is left untouched and an error is returned.
func (h *Host) Process(block [][]float64, params effects.CrusherParams) error {
	req := request{block: cloneBlock(block), params: params, reply: make(chan error, 1)}

	select {
	case h.requests <- req:
	case <-h.done:
		return ErrClosed
	}

	err := <-req.reply
	if err != nil {
		h.log.WithFields(logrus.Fields{
			"bits":       params.Bits,
			"targetRate": params.TargetRate,
		}).WithError(err).Warn("worklet rejected crusher parameters")

		return err
	}

	for ch := range block {
		copy(block[ch], req.block[ch])
	}

	return nil
}

func cloneBlock(block [][]float64) [][]float64 {
	out := make([][]float64, len(block))
	for ch, buf := range block {
		out[ch] = append([]float64(nil), buf...)
	}

	return out
}

// Close stops the worker. It is safe to call more than once.
func (h *Host) Close() error {
	h.once.Do(func() { close(h.done) })
	return nil
}
