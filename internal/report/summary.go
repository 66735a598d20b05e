package report

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/seqmnist/internal/rnn"
)

// Summary describes the tail of a training history.
type Summary struct {
	Samples            int
	BestValidation     float64
	BestIteration      int
	TailTrainMean      float64
	TailValidationMean float64
	TailValidationStd  float64
}

// Summarize computes the best validation accuracy and the mean accuracies
// over the last window samples. A window <= 0 or larger than the history
// covers every sample.
func Summarize(h rnn.History, window int) (Summary, error) {
	n := h.Len()
	if n == 0 {
		return Summary{}, fmt.Errorf("summarize: empty history")
	}
	if len(h.Validation) != n {
		return Summary{}, fmt.Errorf("summarize: history has %d training and %d validation samples", n, len(h.Validation))
	}
	if window <= 0 || window > n {
		window = n
	}

	train := toFloat64(h.Train)
	validation := toFloat64(h.Validation)
	best := floats.MaxIdx(validation)

	s := Summary{
		Samples:        n,
		BestValidation: validation[best],
		BestIteration:  iteration(h, best),
		TailTrainMean:  stat.Mean(train[n-window:], nil),
	}
	s.TailValidationMean, s.TailValidationStd = stat.MeanStdDev(validation[n-window:], nil)
	return s, nil
}

func toFloat64(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
