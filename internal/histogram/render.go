package histogram

import (
	"fmt"
	"image/color"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Labels are the chart texts shared by both renderers.
type Labels struct {
	Title    string
	Subtitle string
	XLabel   string
}

var barFill = color.RGBA{R: 0x31, G: 0x68, B: 0x8e, A: 0xff}

// WritePNG draws h as a bar histogram and writes a PNG image to w.
func WritePNG(w io.Writer, h Histogram, labels Labels) error {
	p := plot.New()
	p.Title.Text = labels.Title
	p.X.Label.Text = labels.XLabel
	p.Y.Label.Text = "Count"

	bins := make([]plotter.HistogramBin, len(h.Counts))
	for i, c := range h.Counts {
		bins[i] = plotter.HistogramBin{Min: h.Edges[i], Max: h.Edges[i+1], Weight: c}
	}
	hist := &plotter.Histogram{
		Bins:      bins,
		Width:     h.BinWidth,
		FillColor: barFill,
		LineStyle: plotter.DefaultLineStyle,
	}
	p.Add(hist)
	if h.Name != "" {
		p.Legend.Add(h.Name, hist)
		p.Legend.Top = true
	}

	wt, err := p.WriterTo(10*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render histogram: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

// WriteHTML renders one bar series per histogram on a shared x axis and
// writes a self-contained ECharts page to w. All histograms must share the
// same edges.
func WriteHTML(w io.Writer, hists []Histogram, labels Labels) error {
	if len(hists) == 0 {
		return fmt.Errorf("no histograms to render")
	}
	for _, h := range hists[1:] {
		if len(h.Counts) != len(hists[0].Counts) {
			return fmt.Errorf("histogram %q has %d bins, want %d", h.Name, len(h.Counts), len(hists[0].Counts))
		}
	}

	centres := hists[0].Centres()
	xLabels := make([]string, len(centres))
	for i, c := range centres {
		xLabels[i] = strconv.FormatFloat(c, 'g', 6, 64)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: labels.Title, Width: "1100px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: labels.Title, Subtitle: labels.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: labels.XLabel, NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	bar.SetXAxis(xLabels)

	for _, h := range hists {
		data := make([]opts.BarData, len(h.Counts))
		for i, c := range h.Counts {
			data[i] = opts.BarData{Value: c}
		}
		bar.AddSeries(h.Name, data)
	}

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
