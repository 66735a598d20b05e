package rnn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, LSTM, cfg.Category)
	assert.Equal(t, Logistic, cfg.Regression)
	assert.Equal(t, 784, cfg.SequenceSize())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"basic rnn", func(c *Config) { c.Category = BasicRNN }, nil},
		{"linear", func(c *Config) { c.Regression = Linear }, nil},
		{"unknown category", func(c *Config) { c.Category = "GRU" }, ErrUnknownCategory},
		{"empty category", func(c *Config) { c.Category = "" }, ErrUnknownCategory},
		{"unknown regression", func(c *Config) { c.Regression = "poisson" }, ErrUnknownRegression},
		{"zero learning rate", func(c *Config) { c.LearningRate = 0 }, ErrInvalidConfig},
		{"zero iterations", func(c *Config) { c.MaxIters = 0 }, ErrInvalidConfig},
		{"negative batch", func(c *Config) { c.BatchSize = -1 }, ErrInvalidConfig},
		{"zero steps", func(c *Config) { c.NSteps = 0 }, ErrInvalidConfig},
		{"zero hidden", func(c *Config) { c.NHidden = 0 }, ErrInvalidConfig},
		{"single class", func(c *Config) { c.NClasses = 1 }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("basicRNN")
	require.NoError(t, err)
	assert.Equal(t, BasicRNN, c)

	c, err = ParseCategory("LSTM")
	require.NoError(t, err)
	assert.Equal(t, LSTM, c)

	_, err = ParseCategory("lstm")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestParseRegression(t *testing.T) {
	r, err := ParseRegression("linear")
	require.NoError(t, err)
	assert.Equal(t, Linear, r)

	_, err = ParseRegression("softmax")
	assert.ErrorIs(t, err, ErrUnknownRegression)
}

func TestHistoryClone(t *testing.T) {
	var h History
	h.append(0.5, 0.4)
	h.append(0.6, 0.55)
	assert.Equal(t, 2, h.Len())

	c := h.Clone()
	c.Train[0] = 99
	c.Validation[1] = 99
	assert.Equal(t, float32(0.5), h.Train[0])
	assert.Equal(t, float32(0.55), h.Validation[1])
}

func TestHistoryCloneEmpty(t *testing.T) {
	var h History
	c := h.Clone()
	assert.Equal(t, 0, c.Len())
}
