package dataset

import (
	"fmt"
	"math/rand"
)

// Synthetic generates n 28x28 digit-like samples.
//
// Digit d is a bright horizontal band starting at row 2*d (shifted down by
// up to one row) over columns 5-22, plus low-amplitude noise. The patterns
// are not realistic MNIST; they are separable by a recurrent model reading
// rows, which is enough to exercise the training pipeline without the
// real files.
func Synthetic(n int, seed int64) (images, labels [][]float32) {
	//nolint:gosec // synthetic data, not security-critical
	rng := rand.New(rand.NewSource(seed))
	images = make([][]float32, n)
	labels = make([][]float32, n)

	for i := range images {
		digit := i % NumClasses
		img := make([]float32, NumPixels)
		for p := range img {
			img[p] = rng.Float32() * 0.1
		}

		startRow := digit*2 + rng.Intn(2)
		for row := startRow; row < startRow+8 && row < ImageSize; row++ {
			for col := 5; col < 23; col++ {
				img[row*ImageSize+col] = 0.8 + rng.Float32()*0.2
			}
		}

		images[i] = img
		labels[i] = OneHot(digit, NumClasses)
	}
	return images, labels
}

// SyntheticSizes sets the number of samples per split.
type SyntheticSizes struct {
	Train      int
	Validation int
	Test       int
}

// NewSynthetic builds a dataset of synthetic digits.
func NewSynthetic(sizes SyntheticSizes, seed int64) (*MNIST, error) {
	if sizes.Train <= 0 || sizes.Validation <= 0 || sizes.Test <= 0 {
		return nil, fmt.Errorf("%w: synthetic sizes must be > 0 (got %+v)", ErrInvalidSplit, sizes)
	}

	trainImages, trainLabels := Synthetic(sizes.Train, seed)
	valImages, valLabels := Synthetic(sizes.Validation, seed+1)
	testImages, testLabels := Synthetic(sizes.Test, seed+2)

	train, err := NewSplit("train", trainImages, trainLabels, seed)
	if err != nil {
		return nil, err
	}
	validation, err := NewSplit("validation", valImages, valLabels, seed+1)
	if err != nil {
		return nil, err
	}
	test, err := NewSplit("test", testImages, testLabels, seed+2)
	if err != nil {
		return nil, err
	}
	return New(train, validation, test), nil
}
