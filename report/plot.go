package report

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/lixenwraith/symreg/gp"
)

// ErrNoFinitePoints is returned when every recorded fitness is infinite
var ErrNoFinitePoints = errors.New("no finite fitness values to plot")

// PlotHistory draws best and mean fitness per generation and saves it to path.
// The image format follows the path extension
func PlotHistory(history []gp.GenerationStats, title, path string) error {
	best, mean := historyPoints(history)
	if len(best) == 0 {
		return ErrNoFinitePoints
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness (sum of absolute error)"

	bestLine, err := plotter.NewLine(best)
	if err != nil {
		return fmt.Errorf("best line: %w", err)
	}
	p.Add(bestLine)
	p.Legend.Add("best", bestLine)

	if len(mean) > 0 {
		meanLine, err := plotter.NewLine(mean)
		if err != nil {
			return fmt.Errorf("mean line: %w", err)
		}
		meanLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(meanLine)
		p.Legend.Add("mean", meanLine)
	}
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}

// historyPoints converts history into plot series, dropping infinite values
func historyPoints(history []gp.GenerationStats) (best, mean plotter.XYs) {
	for _, gs := range history {
		x := float64(gs.Generation)
		if !math.IsInf(gs.BestFitness, 0) && !math.IsNaN(gs.BestFitness) {
			best = append(best, plotter.XY{X: x, Y: gs.BestFitness})
		}
		if !math.IsInf(gs.MeanFitness, 0) && !math.IsNaN(gs.MeanFitness) {
			mean = append(mean, plotter.XY{X: x, Y: gs.MeanFitness})
		}
	}
	return best, mean
}
