package rnn

// Split is one partition of a dataset (train, validation or test).
//
// Images are flat vectors of NSteps*NInput values; labels are one-hot
// vectors of NClasses values.
type Split interface {
	// NextBatch returns the next n samples, wrapping to a new epoch when the
	// split is exhausted.
	NextBatch(n int) (images, labels [][]float32)

	// Images returns every image in the split.
	Images() [][]float32

	// Labels returns every one-hot label in the split.
	Labels() [][]float32

	// Len returns the number of samples.
	Len() int
}

// Dataset provides the three splits a training run reads from.
type Dataset interface {
	Train() Split
	Validation() Split
	Test() Split
}

// classIndices converts one-hot labels to class indices (argmax per row).
func classIndices(labels [][]float32) []int32 {
	out := make([]int32, len(labels))
	for i, row := range labels {
		best := 0
		for k, v := range row {
			if v > row[best] {
				best = k
			}
		}
		out[i] = int32(best)
	}
	return out
}
