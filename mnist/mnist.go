// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mnist loads the MNIST handwritten digits for sequence models.
//
// Load reads the four IDX files (raw or .gz) from a directory and holds out
// the head of the training set for validation:
//
//	data, err := mnist.Load("./data", mnist.Options{Verify: true})
//
// NewSynthetic generates small digit-like datasets that need no download.
package mnist

import (
	"github.com/born-ml/seqmnist/internal/dataset"
)

// MNIST holds the train, validation and test splits.
type MNIST = dataset.MNIST

// Split is a set of normalized images with one-hot labels.
type Split = dataset.Split

// Options controls Load.
type Options = dataset.Options

// SyntheticSizes sets the number of generated samples per split.
type SyntheticSizes = dataset.SyntheticSizes

// Image geometry.
const (
	ImageSize  = dataset.ImageSize
	NumPixels  = dataset.NumPixels
	NumClasses = dataset.NumClasses
)

// Errors returned while reading files.
var (
	ErrInvalidMagic     = dataset.ErrInvalidMagic
	ErrCountMismatch    = dataset.ErrCountMismatch
	ErrChecksumMismatch = dataset.ErrChecksumMismatch
	ErrInvalidSplit     = dataset.ErrInvalidSplit
)

// Load reads MNIST from dir.
func Load(dir string, opts Options) (*MNIST, error) {
	return dataset.Load(dir, opts)
}

// NewSynthetic generates a dataset of digit-like images.
func NewSynthetic(sizes SyntheticSizes, seed int64) (*MNIST, error) {
	return dataset.NewSynthetic(sizes, seed)
}
