package diag

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotTrajectory renders the normalized objective value over committed
// frames as an SVG line chart.
func PlotTrajectory(path string, frames []int, values []float64) error {
	if len(frames) != len(values) {
		panic(fmt.Sprintf("diag: %d frames for %d values", len(frames), len(values)))
	}
	p := plot.New()
	p.Title.Text = "objective trajectory"
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "normalized value"
	p.Y.Min, p.Y.Max = 0, 1

	xys := make(plotter.XYs, len(frames))
	for i := range frames {
		xys[i].X = float64(frames[i])
		xys[i].Y = values[i]
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("plot trajectory: %w", err)
	}
	p.Add(line)
	if err := p.Save(16*vg.Centimeter, 8*vg.Centimeter, path); err != nil {
		return fmt.Errorf("plot trajectory: %w", err)
	}
	return nil
}

// PlotScores renders one round's per-next immediate scores as an SVG
// scatter, with the chosen candidate called out in the title.
func PlotScores(path string, iter int, immediates []float64, chosen int) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("round %d score distribution (picked #%d)", iter, chosen)
	p.X.Label.Text = "candidate"
	p.Y.Label.Text = "immediate"

	xys := make(plotter.XYs, len(immediates))
	for i, v := range immediates {
		xys[i].X = float64(i)
		xys[i].Y = v
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("plot scores: %w", err)
	}
	p.Add(scatter)
	if err := p.Save(16*vg.Centimeter, 8*vg.Centimeter, path); err != nil {
		return fmt.Errorf("plot scores: %w", err)
	}
	return nil
}
