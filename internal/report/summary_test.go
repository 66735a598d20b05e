package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/seqmnist/internal/rnn"
)

func TestSummarize(t *testing.T) {
	h := rnn.History{
		Train:      []float32{0.5, 0.75, 0.5, 1.0},
		Validation: []float32{0.25, 0.75, 0.5, 0.5},
		Every:      10,
	}

	s, err := Summarize(h, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Samples)
	assert.InDelta(t, 0.75, s.BestValidation, 1e-9)
	assert.Equal(t, 20, s.BestIteration)
	assert.InDelta(t, 0.75, s.TailTrainMean, 1e-9)
	assert.InDelta(t, 0.5, s.TailValidationMean, 1e-9)
	assert.InDelta(t, 0, s.TailValidationStd, 1e-9)
}

func TestSummarizeWholeHistory(t *testing.T) {
	s, err := Summarize(sampleHistory(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Samples)
	assert.InDelta(t, 0.8, s.BestValidation, 1e-6)
	assert.Equal(t, 30, s.BestIteration)
	assert.InDelta(t, (0.25+0.5+0.875)/3, s.TailTrainMean, 1e-6)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(rnn.History{}, 5)
	assert.Error(t, err)
}
