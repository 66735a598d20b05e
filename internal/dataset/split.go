package dataset

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/seqmnist/internal/rnn"
)

// Split is an in-memory partition of a dataset with epoch-based batching.
//
// The first epoch visits samples in stored order; every following epoch
// visits them in a fresh random permutation.
type Split struct {
	name   string
	images [][]float32
	labels [][]float32
	perm   []int
	pos    int
	epochs int
	rng    *rand.Rand
}

var _ rnn.Split = (*Split)(nil)

// NewSplit wraps images and one-hot labels. seed drives the per-epoch
// shuffles.
func NewSplit(name string, images, labels [][]float32, seed int64) (*Split, error) {
	if len(images) != len(labels) {
		return nil, fmt.Errorf("%w: %s: %d images, %d labels", ErrCountMismatch, name, len(images), len(labels))
	}
	perm := make([]int, len(images))
	for i := range perm {
		perm[i] = i
	}
	return &Split{
		name:   name,
		images: images,
		labels: labels,
		perm:   perm,
		//nolint:gosec // shuffling order, not security-critical
		rng: rand.New(rand.NewSource(seed)),
	}, nil
}

// Name returns the split name ("train", "validation" or "test").
func (s *Split) Name() string {
	return s.name
}

// NextBatch returns the next n samples.
//
// When fewer than n samples remain in the current epoch, the split is
// reshuffled and the batch starts the next epoch. n larger than Len is
// clamped to Len.
func (s *Split) NextBatch(n int) (images, labels [][]float32) {
	if n <= 0 || len(s.images) == 0 {
		return nil, nil
	}
	if n > len(s.images) {
		n = len(s.images)
	}
	if s.pos+n > len(s.images) {
		s.epochs++
		s.rng.Shuffle(len(s.perm), func(i, j int) {
			s.perm[i], s.perm[j] = s.perm[j], s.perm[i]
		})
		s.pos = 0
	}

	images = make([][]float32, n)
	labels = make([][]float32, n)
	for i, idx := range s.perm[s.pos : s.pos+n] {
		images[i] = s.images[idx]
		labels[i] = s.labels[idx]
	}
	s.pos += n
	return images, labels
}

// Images returns every image in stored order.
func (s *Split) Images() [][]float32 {
	return s.images
}

// Labels returns every one-hot label in stored order.
func (s *Split) Labels() [][]float32 {
	return s.labels
}

// Len returns the number of samples.
func (s *Split) Len() int {
	return len(s.images)
}

// EpochsCompleted returns how many times NextBatch has wrapped around.
func (s *Split) EpochsCompleted() int {
	return s.epochs
}

// OneHot returns a vector of length classes with a 1 at label.
func OneHot(label, classes int) []float32 {
	v := make([]float32, classes)
	v[label] = 1
	return v
}
