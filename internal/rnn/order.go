package rnn

import (
	"fmt"

	"github.com/born-ml/seqmnist/internal/parallel"
)

// Order controls how a flat image vector is read as a sequence of
// NSteps vectors of NInput values.
type Order byte

// Supported orderings.
const (
	// OrderC reads the vector row-major: step t holds values
	// [t*NInput, (t+1)*NInput). For 28x28 images step t is image row t.
	OrderC Order = 'C'
	// OrderF reads the vector column-major: step t, position k holds
	// value t + k*NSteps. For 28x28 images step t is image column t.
	OrderF Order = 'F'
)

// ParseOrder returns the ordering named by s ("C" or "F").
func ParseOrder(s string) (Order, error) {
	switch s {
	case "C", "c":
		return OrderC, nil
	case "F", "f":
		return OrderF, nil
	}
	return 0, fmt.Errorf("%w: %q (want \"C\" or \"F\")", ErrInvalidOrder, s)
}

// String implements fmt.Stringer.
func (o Order) String() string {
	return string(rune(o))
}

// Valid reports whether o is a supported ordering.
func (o Order) Valid() bool {
	return o == OrderC || o == OrderF
}

// Sequence writes flat into dst laid out as [steps, width].
//
// len(flat) and len(dst) must both equal steps*width.
func (o Order) Sequence(dst, flat []float32, steps, width int) error {
	n := steps * width
	if len(flat) != n || len(dst) != n {
		return fmt.Errorf("%w: sequence of %dx%d needs %d values, got %d (dst %d)",
			ErrShapeMismatch, steps, width, n, len(flat), len(dst))
	}
	switch o {
	case OrderC:
		copy(dst, flat)
	case OrderF:
		for t := 0; t < steps; t++ {
			row := dst[t*width : (t+1)*width]
			for k := range row {
				row[k] = flat[t+k*steps]
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrder, o.String())
	}
	return nil
}

// Batch lays out images as a single [len(images), steps, width] buffer.
func (o Order) Batch(images [][]float32, steps, width int) ([]float32, error) {
	size := steps * width
	out := make([]float32, len(images)*size)
	err := parallel.Range(len(images), parallel.DefaultConfig(), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			if err := o.Sequence(out[i*size:(i+1)*size], images[i], steps, width); err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
