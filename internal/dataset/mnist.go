// Package dataset loads MNIST into train, validation and test splits
// for the recurrent classifier.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/born-ml/seqmnist/internal/parallel"
	"github.com/born-ml/seqmnist/internal/rnn"
)

// MNIST image geometry and class count.
const (
	ImageSize  = 28
	NumPixels  = ImageSize * ImageSize
	NumClasses = 10
)

// DefaultValidationSize is the number of training images held out for
// validation.
const DefaultValidationSize = 5000

// File names of the four MNIST archives, without the ".gz" suffix.
const (
	TrainImagesFile = "train-images-idx3-ubyte"
	TrainLabelsFile = "train-labels-idx1-ubyte"
	TestImagesFile  = "t10k-images-idx3-ubyte"
	TestLabelsFile  = "t10k-labels-idx1-ubyte"
)

// MNIST holds the three splits.
type MNIST struct {
	train      *Split
	validation *Split
	test       *Split
}

var _ rnn.Dataset = (*MNIST)(nil)

// New assembles a dataset from prepared splits.
func New(train, validation, test *Split) *MNIST {
	return &MNIST{train: train, validation: validation, test: test}
}

// Train returns the training split.
func (m *MNIST) Train() rnn.Split { return m.train }

// Validation returns the validation split.
func (m *MNIST) Validation() rnn.Split { return m.validation }

// Test returns the test split.
func (m *MNIST) Test() rnn.Split { return m.test }

// Splits returns the concrete splits.
func (m *MNIST) Splits() (train, validation, test *Split) {
	return m.train, m.validation, m.test
}

// Options controls Load.
type Options struct {
	// ValidationSize is the number of leading training images held out for
	// validation. Zero means DefaultValidationSize; negative means none.
	ValidationSize int

	// Seed drives the per-epoch shuffles of every split.
	Seed int64

	// Verify checks gzip archives against Digests before decoding.
	Verify bool
}

// Load reads the four MNIST files from dir.
//
// Each file may be stored raw or gzip-compressed with a ".gz" suffix.
// Pixels are scaled to [0, 1] and labels one-hot encoded.
func Load(dir string, opts Options) (*MNIST, error) {
	valSize := opts.ValidationSize
	switch {
	case valSize == 0:
		valSize = DefaultValidationSize
	case valSize < 0:
		valSize = 0
	}

	trainImages, trainLabels, err := loadPair(dir, TrainImagesFile, TrainLabelsFile, opts.Verify)
	if err != nil {
		return nil, err
	}
	testImages, testLabels, err := loadPair(dir, TestImagesFile, TestLabelsFile, opts.Verify)
	if err != nil {
		return nil, err
	}
	if valSize >= len(trainImages) {
		return nil, fmt.Errorf("%w: validation size %d leaves no training images (have %d)",
			ErrInvalidSplit, valSize, len(trainImages))
	}

	train, err := NewSplit("train", trainImages[valSize:], trainLabels[valSize:], opts.Seed)
	if err != nil {
		return nil, err
	}
	validation, err := NewSplit("validation", trainImages[:valSize], trainLabels[:valSize], opts.Seed+1)
	if err != nil {
		return nil, err
	}
	test, err := NewSplit("test", testImages, testLabels, opts.Seed+2)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"dir":        dir,
		"train":      train.Len(),
		"validation": validation.Len(),
		"test":       test.Len(),
	}).Info("MNIST loaded")
	return New(train, validation, test), nil
}

func loadPair(dir, imageName, labelName string, verify bool) ([][]float32, [][]float32, error) {
	imagePath, err := locate(dir, imageName, verify)
	if err != nil {
		return nil, nil, err
	}
	labelPath, err := locate(dir, labelName, verify)
	if err != nil {
		return nil, nil, err
	}

	raw, err := ReadImages(imagePath)
	if err != nil {
		return nil, nil, fmt.Errorf("load images: %w", err)
	}
	rawLabels, err := ReadLabels(labelPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load labels: %w", err)
	}
	if len(raw.Pixels) != len(rawLabels) {
		return nil, nil, fmt.Errorf("%w: %s has %d, %s has %d",
			ErrCountMismatch, imagePath, len(raw.Pixels), labelPath, len(rawLabels))
	}

	images := make([][]float32, len(raw.Pixels))
	labels := make([][]float32, len(rawLabels))
	err = parallel.Range(len(images), parallel.DefaultConfig(), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			if int(rawLabels[i]) >= NumClasses {
				return fmt.Errorf("%s: label out of range [0, %d] at %d: %d",
					labelPath, NumClasses-1, i, rawLabels[i])
			}
			images[i] = Normalize(raw.Pixels[i])
			labels[i] = OneHot(int(rawLabels[i]), NumClasses)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return images, labels, nil
}

// locate finds name or name+".gz" in dir.
func locate(dir, name string, verify bool) (string, error) {
	plain := filepath.Join(dir, name)
	if _, err := os.Stat(plain); err == nil {
		return plain, nil
	}

	gz := plain + ".gz"
	if _, err := os.Stat(gz); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s not found in %s (also tried %s.gz): %w", name, dir, name, fs.ErrNotExist)
		}
		return "", err
	}
	if verify {
		if want, ok := Digests[name+".gz"]; ok {
			if err := VerifyFile(gz, want); err != nil {
				return "", err
			}
		}
	}
	return gz, nil
}

// Normalize scales 0-255 pixels to [0, 1].
func Normalize(pixels []byte) []float32 {
	out := make([]float32, len(pixels))
	for i, p := range pixels {
		out[i] = float32(p) / 255.0
	}
	return out
}
