package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/seqmnist/internal/rnn"
)

func sampleHistory() rnn.History {
	return rnn.History{
		Train:      []float32{0.25, 0.5, 0.875},
		Validation: []float32{0.2, 0.45, 0.8},
		Every:      10,
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleHistory()))

	want := "iteration,train_accuracy,validation_accuracy\n" +
		"10,0.25000,0.20000\n" +
		"20,0.50000,0.45000\n" +
		"30,0.87500,0.80000\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVUnevenHistory(t *testing.T) {
	h := rnn.History{Train: []float32{0.1}, Every: 1}
	assert.Error(t, WriteCSV(&bytes.Buffer{}, h))
}

func TestIterationWithoutInterval(t *testing.T) {
	h := rnn.History{Train: []float32{0.1, 0.2}, Validation: []float32{0.1, 0.2}}
	assert.Equal(t, 1, iteration(h, 0))
	assert.Equal(t, 2, iteration(h, 1))
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, SaveCSV(path, sampleHistory()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "30,0.87500,0.80000")
}

func TestPlotHistory(t *testing.T) {
	for _, ext := range []string{"png", "svg"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "history."+ext)
			require.NoError(t, PlotHistory(path, sampleHistory(), "LSTM"))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}

func TestPlotHistoryEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	assert.Error(t, PlotHistory(path, rnn.History{}, "empty"))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
