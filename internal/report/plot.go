package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/born-ml/seqmnist/internal/rnn"
)

// Plot size.
const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch
)

// PlotHistory renders the training and validation accuracy curves to path.
// The image format follows the extension (.png, .svg, .pdf, ...).
func PlotHistory(path string, h rnn.History, title string) error {
	if h.Len() == 0 {
		return fmt.Errorf("plot %s: empty history", path)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Accuracy"
	p.Y.Min = 0
	p.Y.Max = 1
	p.Add(plotter.NewGrid())

	if err := plotutil.AddLines(p,
		"training", points(h, h.Train),
		"validation", points(h, h.Validation),
	); err != nil {
		return fmt.Errorf("plot %s: %w", path, err)
	}
	p.Legend.Top = false
	p.Legend.Left = false

	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("plot %s: %w", path, err)
	}
	return nil
}

func points(h rnn.History, values []float32) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i].X = float64(iteration(h, i))
		xys[i].Y = float64(v)
	}
	return xys
}
