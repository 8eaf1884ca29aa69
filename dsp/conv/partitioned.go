package conv

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/tphakala/simd/c128"
)

// Partitioned implements uniformly partitioned overlap-save convolution.
//
// The kernel is split into partitions of blockSize samples. Each partition
// is zero-padded to 2*blockSize and transformed once at construction. Per
// block, the last 2*blockSize input samples are transformed, pushed onto a
// frequency-domain delay line, multiplied against the partition spectra and
// accumulated, and the second half of the inverse transform is emitted.
type Partitioned struct {
	blockSize int
	fftSize   int
	kernelLen int

	plan *algofft.Plan[complex128]

	partitions [][]complex128 // kernel partition spectra
	history    [][]complex128 // frequency-domain delay line of input spectra
	head       int            // index of the newest spectrum in history

	window  []float64 // previous block followed by current block
	scratch []complex128
	product []complex128
	accum   []complex128
	timeBuf []complex128
}

// NewPartitioned creates a convolver for kernel that consumes and produces
// blockSize samples per call. blockSize must be a power of two.
func NewPartitioned(kernel []float64, blockSize int) (*Partitioned, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	if !isPowerOf2(blockSize) {
		return nil, fmt.Errorf("%w: %d is not a power of two", ErrInvalidBlockSize, blockSize)
	}

	fftSize := 2 * blockSize

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	count := (len(kernel) + blockSize - 1) / blockSize

	p := &Partitioned{
		blockSize:  blockSize,
		fftSize:    fftSize,
		kernelLen:  len(kernel),
		plan:       plan,
		partitions: make([][]complex128, count),
		history:    make([][]complex128, count),
		window:     make([]float64, fftSize),
		scratch:    make([]complex128, fftSize),
		product:    make([]complex128, fftSize),
		accum:      make([]complex128, fftSize),
		timeBuf:    make([]complex128, fftSize),
	}

	for i := range count {
		clear(p.scratch)

		start := i * blockSize
		end := min(start+blockSize, len(kernel))
		for j, v := range kernel[start:end] {
			p.scratch[j] = complex(v, 0)
		}

		p.partitions[i] = make([]complex128, fftSize)

		err = plan.Forward(p.partitions[i], p.scratch)
		if err != nil {
			return nil, fmt.Errorf("conv: failed to compute kernel FFT: %w", err)
		}

		p.history[i] = make([]complex128, fftSize)
	}

	return p, nil
}

// BlockSize returns the number of samples consumed per call.
func (p *Partitioned) BlockSize() int { return p.blockSize }

// KernelLen returns the kernel length.
func (p *Partitioned) KernelLen() int { return p.kernelLen }

// Partitions returns the number of kernel partitions.
func (p *Partitioned) Partitions() int { return len(p.partitions) }

// ProcessBlock convolves one block of input into dst. Both slices must be
// exactly BlockSize long; dst and src may alias.
func (p *Partitioned) ProcessBlock(dst, src []float64) error {
	if len(src) != p.blockSize || len(dst) != p.blockSize {
		return fmt.Errorf("%w: got src=%d dst=%d, want %d",
			ErrLengthMismatch, len(src), len(dst), p.blockSize)
	}

	err := p.push(src)
	if err != nil {
		return err
	}

	clear(p.accum)

	n := len(p.partitions)
	for i := range n {
		idx := p.head - i
		if idx < 0 {
			idx += n
		}

		c128.Mul(p.product, p.history[idx], p.partitions[i])

		for k, v := range p.product {
			p.accum[k] += v
		}
	}

	err = p.plan.Inverse(p.timeBuf, p.accum)
	if err != nil {
		return fmt.Errorf("conv: inverse FFT failed: %w", err)
	}

	for i := range dst {
		dst[i] = real(p.timeBuf[p.blockSize+i])
	}

	return nil
}

// Idle feeds one block of input into the convolver history without
// computing output.
func (p *Partitioned) Idle(src []float64) error {
	if len(src) != p.blockSize {
		return fmt.Errorf("%w: got src=%d, want %d", ErrLengthMismatch, len(src), p.blockSize)
	}

	return p.push(src)
}

// Reset clears all input history.
func (p *Partitioned) Reset() {
	clear(p.window)

	for _, h := range p.history {
		clear(h)
	}

	p.head = 0
}

func (p *Partitioned) push(src []float64) error {
	copy(p.window, p.window[p.blockSize:])
	copy(p.window[p.blockSize:], src)

	for i, v := range p.window {
		p.scratch[i] = complex(v, 0)
	}

	p.head++
	if p.head >= len(p.history) {
		p.head = 0
	}

	err := p.plan.Forward(p.history[p.head], p.scratch)
	if err != nil {
		return fmt.Errorf("conv: forward FFT failed: %w", err)
	}

	return nil
}
