package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// RenderHTML writes an echarts page for v: both pilots' planar positions
// during the matched window and their distance over time.
func RenderHTML(w io.Writer, v PairView) error {
	window := v.Analysis.Window
	if len(window) == 0 {
		return ErrNoWindow
	}

	title := fmt.Sprintf("%s / %s", v.label1(), v.label2())
	subtitle := fmt.Sprintf("%s together from %s", PrettyDuration(len(window)),
		time.Unix(window[0].Time(), 0).UTC().Format("15:04:05"))

	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsPrefix)
	page.PageTitle = title
	page.AddCharts(positionChart(v, title, subtitle), distanceChart(v))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}

func positionChart(v PairView, title, subtitle string) *charts.Scatter {
	window := v.Analysis.Window
	pts1 := make([]opts.ScatterData, 0, len(window))
	pts2 := make([]opts.ScatterData, 0, len(window))
	xs := make([]float64, 0, 2*len(window))
	ys := make([]float64, 0, 2*len(window))
	for _, p := range window {
		pts1 = append(pts1, opts.ScatterData{Value: []interface{}{p.A.Pos.X, p.A.Pos.Y}})
		pts2 = append(pts2, opts.ScatterData{Value: []interface{}{p.B.Pos.X, p.B.Pos.Y}})
		xs = append(xs, p.A.Pos.X, p.B.Pos.X)
		ys = append(ys, p.A.Pos.Y, p.B.Pos.Y)
	}

	// Equal axes so circles stay round.
	cx := (floats.Min(xs) + floats.Max(xs)) / 2
	cy := (floats.Min(ys) + floats.Max(ys)) / 2
	pad := max(floats.Max(xs)-floats.Min(xs), floats.Max(ys)-floats.Min(ys))/2 + 20

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "800px", Height: "800px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Min: cx - pad, Max: cx + pad, Name: "East (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: cy - pad, Max: cy + pad, Name: "North (m)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries(v.label1(), pts1, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#1e88e5"}))
	scatter.AddSeries(v.label2(), pts2, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#e53935"}))
	return scatter
}

func distanceChart(v PairView) *charts.Line {
	window := v.Analysis.Window
	x := make([]int, len(window))
	dist := make([]opts.LineData, len(window))
	alt := make([]opts.LineData, len(window))
	t0 := window[0].Time()
	for i, p := range window {
		x[i] = int(p.Time() - t0)
		dist[i] = opts.LineData{Value: p.Distance}
		alt[i] = opts.LineData{Value: p.AltDistance}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "800px", Height: "400px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Separation"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Distance (m)"}),
	)
	line.SetXAxis(x).
		AddSeries("horizontal", dist).
		AddSeries("vertical", alt)
	return line
}
