// Package rnn implements a one-layer recurrent classifier that reads each
// image as a sequence of rows.
//
// The graph is declared with Born tensors: a BasicCell or LSTMCell unrolled
// over NSteps inputs, a linear head on the last hidden state, softmax
// cross-entropy loss and the Adam optimizer. Gradients come from Born's
// gradient tape.
//
// Usage:
//
//	model, err := rnn.New(rnn.DefaultConfig(), cpu.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := model.Train(ctx, data, rnn.TrainOptions{ReportEvery: 10, DisplayEvery: 100})
//	trainAcc, valAcc := model.Params()
package rnn

import (
	"io"
	"os"
	"time"

	"github.com/born-ml/born/tensor"
	"github.com/sirupsen/logrus"
)

// Model holds the hyperparameters of a recurrent classifier and the
// accuracy history accumulated by its training runs.
//
// Each call to Train builds a new graph on a fresh autodiff backend, so
// consecutive runs share nothing but the history. A Model must not be
// trained from several goroutines at once.
type Model[B tensor.Backend] struct {
	cfg     Config
	base    B
	history History
	logger  *logrus.Logger
}

// New creates a model that trains on the given compute backend.
//
// Returns an error wrapping ErrUnknownCategory, ErrUnknownRegression or
// ErrInvalidConfig when cfg cannot be built.
func New[B tensor.Backend](cfg Config, backend B) (*Model[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Model[B]{
		cfg:    cfg,
		base:   backend,
		logger: logrus.StandardLogger(),
	}, nil
}

// SetLogger replaces the logger used for training progress. Per-report
// entries are logged at debug level. A nil logger discards everything.
func (m *Model[B]) SetLogger(l *logrus.Logger) {
	if l == nil {
		l = logrus.New()
		l.SetOutput(io.Discard)
	}
	m.logger = l
}

// Config returns the model configuration.
func (m *Model[B]) Config() Config {
	return m.cfg
}

// Params returns the recorded training and validation accuracies.
//
// The slices are copies; modifying them does not affect the model.
func (m *Model[B]) Params() (train, validation []float32) {
	h := m.history.Clone()
	return h.Train, h.Validation
}

// History returns a copy of the accuracy history.
func (m *Model[B]) History() History {
	return m.history.Clone()
}

// TrainOptions controls a training run.
type TrainOptions struct {
	// Order is the image-to-sequence layout. Zero means OrderC.
	Order Order

	// ReportEvery records accuracies every N iterations. Zero means 10.
	ReportEvery int

	// SampleSize is the number of training and validation samples drawn for
	// each report. Zero reuses the current training batch and draws
	// BatchSize validation samples.
	SampleSize int

	// DisplayEvery prints a report line every N iterations. Zero disables
	// printing. Only iterations that also record a report are printed.
	DisplayEvery int

	// EvalBatchSize bounds the number of samples per forward pass during
	// the final full-split evaluation. Zero means 1000.
	EvalBatchSize int

	// CheckpointPath, if set, receives the trained parameters in Born's
	// native format before the graph is torn down.
	CheckpointPath string

	// Metadata is stored in the checkpoint next to the model description.
	Metadata map[string]string

	// Output receives the report lines. Nil means os.Stdout.
	Output io.Writer
}

func (o TrainOptions) withDefaults() TrainOptions {
	if o.Order == 0 {
		o.Order = OrderC
	}
	if o.ReportEvery == 0 {
		o.ReportEvery = 10
	}
	if o.EvalBatchSize == 0 {
		o.EvalBatchSize = 1000
	}
	if o.Output == nil {
		o.Output = os.Stdout
	}
	return o
}

func (o TrainOptions) validate() error {
	if !o.Order.Valid() {
		return ErrInvalidOrder
	}
	switch {
	case o.ReportEvery < 0:
		return errorf(ErrInvalidOptions, "report interval must be > 0 (got %d)", o.ReportEvery)
	case o.SampleSize < 0:
		return errorf(ErrInvalidOptions, "sample size must be >= 0 (got %d)", o.SampleSize)
	case o.DisplayEvery < 0:
		return errorf(ErrInvalidOptions, "display interval must be >= 0 (got %d)", o.DisplayEvery)
	case o.EvalBatchSize < 0:
		return errorf(ErrInvalidOptions, "evaluation batch size must be > 0 (got %d)", o.EvalBatchSize)
	}
	return nil
}

// Result summarizes a completed training run.
type Result struct {
	Iterations         int
	FinalTrainAccuracy float32
	FinalTestAccuracy  float32
	Elapsed            time.Duration
}
