// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package rnn

import (
	"github.com/born-ml/born/tensor"

	"github.com/born-ml/seqmnist/internal/rnn"
)

// Model is a recurrent classifier together with its accuracy history.
type Model[B tensor.Backend] = rnn.Model[B]

// Config holds the model hyperparameters.
type Config = rnn.Config

// Category selects the recurrent cell.
type Category = rnn.Category

// Regression selects the output activation.
type Regression = rnn.Regression

// Order selects how an image is turned into a sequence.
type Order = rnn.Order

// TrainOptions controls the training loop.
type TrainOptions = rnn.TrainOptions

// Result summarizes a finished training run.
type Result = rnn.Result

// History holds the recorded training and validation accuracies.
type History = rnn.History

// Dataset provides the train, validation and test splits.
type Dataset = rnn.Dataset

// Split is one portion of a dataset.
type Split = rnn.Split

// Network is the unrolled cell plus the linear classifier head.
type Network[B tensor.Backend] = rnn.Network[B]

// Cell categories.
const (
	BasicRNN = rnn.BasicRNN
	LSTM     = rnn.LSTM
)

// Output activations.
const (
	Logistic = rnn.Logistic
	Linear   = rnn.Linear
)

// Image orderings.
const (
	OrderC = rnn.OrderC
	OrderF = rnn.OrderF
)

// Errors returned by New and Train.
var (
	ErrUnknownCategory   = rnn.ErrUnknownCategory
	ErrUnknownRegression = rnn.ErrUnknownRegression
	ErrInvalidConfig     = rnn.ErrInvalidConfig
	ErrInvalidOrder      = rnn.ErrInvalidOrder
	ErrInvalidOptions    = rnn.ErrInvalidOptions
	ErrShapeMismatch     = rnn.ErrShapeMismatch
	ErrEmptySplit        = rnn.ErrEmptySplit
)

// DefaultConfig returns the LSTM setup with 128 hidden units over 28 steps.
func DefaultConfig() Config {
	return rnn.DefaultConfig()
}

// New validates cfg and creates an untrained model.
//
// Example:
//
//	cfg := rnn.DefaultConfig()
//	cfg.MaxIters = 500
//	model, err := rnn.New(cfg, cpu.New())
func New[B tensor.Backend](cfg Config, backend B) (*Model[B], error) {
	return rnn.New(cfg, backend)
}

// NewNetwork builds an untrained network directly, for inference or
// for loading a checkpoint with nn.Load. backend must provide Tanh and
// Sigmoid, e.g. autodiff.New(cpu.New()).
func NewNetwork[B tensor.Backend](cfg Config, backend B) (*Network[B], error) {
	return rnn.NewNetwork(cfg, backend)
}

// ParseCategory converts "basicRNN" or "LSTM" into a Category.
func ParseCategory(s string) (Category, error) {
	return rnn.ParseCategory(s)
}

// ParseOrder converts "C" or "F" into an Order.
func ParseOrder(s string) (Order, error) {
	return rnn.ParseOrder(s)
}
