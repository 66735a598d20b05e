// Package report exports accuracy histories as CSV tables and plots.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/born-ml/seqmnist/internal/rnn"
)

// csvHeader is the first row of an exported history.
var csvHeader = []string{"iteration", "train_accuracy", "validation_accuracy"}

// WriteCSV writes one row per recorded sample.
func WriteCSV(w io.Writer, h rnn.History) error {
	if len(h.Train) != len(h.Validation) {
		return fmt.Errorf("history has %d training and %d validation samples", len(h.Train), len(h.Validation))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i := range h.Train {
		row := []string{
			strconv.Itoa(iteration(h, i)),
			strconv.FormatFloat(float64(h.Train[i]), 'f', 5, 32),
			strconv.FormatFloat(float64(h.Validation[i]), 'f', 5, 32),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the history to a file.
func SaveCSV(path string, h rnn.History) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, h); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// iteration returns the training iteration at which sample i was recorded.
func iteration(h rnn.History, i int) int {
	every := h.Every
	if every <= 0 {
		every = 1
	}
	return (i + 1) * every
}
