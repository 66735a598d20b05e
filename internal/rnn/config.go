package rnn

import (
	"fmt"
)

// Category selects the recurrent cell used to unroll the sequence.
type Category string

// Supported cell categories.
const (
	BasicRNN Category = "basicRNN" // h' = tanh(x·Wx + h·Wh + b)
	LSTM     Category = "LSTM"     // gated memory cell with forget bias 1.0
)

// ParseCategory returns the category named by s.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case BasicRNN, LSTM:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownCategory, s, BasicRNN, LSTM)
}

// Regression selects how the classifier head turns hidden output into
// class scores.
type Regression string

// Supported output activations.
const (
	Logistic Regression = "logistic" // softmax-normalized probabilities
	Linear   Regression = "linear"   // raw scores
)

// ParseRegression returns the output activation named by s.
func ParseRegression(s string) (Regression, error) {
	switch r := Regression(s); r {
	case Logistic, Linear:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownRegression, s, Logistic, Linear)
}

// Config holds the hyperparameters of a one-layer recurrent classifier.
//
// A Model copies its Config at construction, so later changes to the
// caller's value have no effect.
type Config struct {
	Category     Category   // Recurrent cell type
	LearningRate float32    // Adam step size
	MaxIters     int        // Number of gradient updates
	BatchSize    int        // Samples per gradient update
	NInput       int        // Input width of one time step
	NSteps       int        // Number of time steps
	NHidden      int        // Hidden state width
	NClasses     int        // Number of output classes
	Regression   Regression // Output activation
}

// DefaultConfig returns the row-by-row MNIST setup: 28 steps of 28 pixels,
// 128 hidden units and 10 classes.
func DefaultConfig() Config {
	return Config{
		Category:     LSTM,
		LearningRate: 0.001,
		MaxIters:     10000,
		BatchSize:    128,
		NInput:       28,
		NSteps:       28,
		NHidden:      128,
		NClasses:     10,
		Regression:   Logistic,
	}
}

// Validate verifies the config describes a buildable network.
func (c Config) Validate() error {
	if _, err := ParseCategory(string(c.Category)); err != nil {
		return err
	}
	if _, err := ParseRegression(string(c.Regression)); err != nil {
		return err
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("%w: learning rate must be > 0 (got %g)", ErrInvalidConfig, c.LearningRate)
	}
	checks := []struct {
		name  string
		value int
	}{
		{"max iterations", c.MaxIters},
		{"batch size", c.BatchSize},
		{"input width", c.NInput},
		{"time steps", c.NSteps},
		{"hidden width", c.NHidden},
		{"class count", c.NClasses},
	}
	for _, chk := range checks {
		if chk.value <= 0 {
			return fmt.Errorf("%w: %s must be > 0 (got %d)", ErrInvalidConfig, chk.name, chk.value)
		}
	}
	if c.NClasses < 2 {
		return fmt.Errorf("%w: class count must be >= 2 (got %d)", ErrInvalidConfig, c.NClasses)
	}
	return nil
}

// SequenceSize is the number of values in one flattened sample.
func (c Config) SequenceSize() int {
	return c.NSteps * c.NInput
}
