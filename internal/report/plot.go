package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 4 * vg.Inch
)

func distancePlot(v PairView) (*plot.Plot, error) {
	window := v.Analysis.Window
	if len(window) == 0 {
		return nil, ErrNoWindow
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s / %s", v.label1(), v.label2())
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Distance (m)"

	t0 := window[0].Time()
	dist := make(plotter.XYs, len(window))
	alt := make(plotter.XYs, len(window))
	for i, pr := range window {
		x := float64(pr.Time() - t0)
		dist[i] = plotter.XY{X: x, Y: pr.Distance}
		alt[i] = plotter.XY{X: x, Y: pr.AltDistance}
	}

	distLine, err := plotter.NewLine(dist)
	if err != nil {
		return nil, err
	}
	distLine.Color = color.RGBA{R: 30, G: 136, B: 229, A: 255}
	distLine.Width = vg.Points(1)

	altLine, err := plotter.NewLine(alt)
	if err != nil {
		return nil, err
	}
	altLine.Color = color.RGBA{R: 229, G: 57, B: 53, A: 255}
	altLine.Width = vg.Points(1)
	altLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(plotter.NewGrid(), distLine, altLine)
	p.Legend.Add("horizontal", distLine)
	p.Legend.Add("vertical", altLine)
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// RenderDistancePlot saves the separation over the matched window as an
// image at path; the extension picks the format.
func RenderDistancePlot(path string, v PairView) error {
	p, err := distancePlot(v)
	if err != nil {
		return err
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// WriteDistancePlot is RenderDistancePlot as PNG to w.
func WriteDistancePlot(w io.Writer, v PairView) error {
	p, err := distancePlot(v)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
