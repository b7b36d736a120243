// Package histogram bins relative-position distances and renders the result
// as PNG (gonum/plot) or interactive HTML (go-echarts).
package histogram

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Histogram holds counts over equal-width bins starting at zero.
type Histogram struct {
	Name     string
	BinWidth float64
	Edges    []float64 // len(Counts)+1 bin boundaries
	Counts   []float64
	Included int // distances inside [0, Edges[last])
	Excluded int // distances at or beyond the last edge, or NaN
}

// Centres returns the midpoint of each bin.
func (h Histogram) Centres() []float64 {
	out := make([]float64, len(h.Counts))
	for i := range out {
		out[i] = (h.Edges[i] + h.Edges[i+1]) / 2
	}
	return out
}

// Bin counts distances into bins of binWidth starting at zero. The bins cover
// [0, n*binWidth) with n = ceil(maxDist/binWidth). Distances need not be
// sorted; the input is not modified.
func Bin(name string, distances []float64, binWidth, maxDist float64) (Histogram, error) {
	if !(binWidth > 0) || math.IsInf(binWidth, 1) {
		return Histogram{}, fmt.Errorf("bin width must be positive, got %v", binWidth)
	}
	if !(maxDist > 0) || math.IsInf(maxDist, 1) {
		return Histogram{}, fmt.Errorf("max distance must be positive, got %v", maxDist)
	}

	nBins := int(math.Ceil(maxDist / binWidth))
	edges := floats.Span(make([]float64, nBins+1), 0, float64(nBins)*binWidth)

	sorted := make([]float64, 0, len(distances))
	nan := 0
	for _, d := range distances {
		if math.IsNaN(d) {
			nan++
			continue
		}
		sorted = append(sorted, d)
	}
	if !sort.Float64sAreSorted(sorted) {
		sort.Float64s(sorted)
	}

	lo := sort.SearchFloat64s(sorted, 0)
	hi := sort.SearchFloat64s(sorted, edges[nBins])
	x := sorted[lo:hi]

	return Histogram{
		Name:     name,
		BinWidth: binWidth,
		Edges:    edges,
		Counts:   stat.Histogram(nil, edges, x, nil),
		Included: len(x),
		Excluded: len(distances) - len(x),
	}, nil
}

// Summary describes a distance column.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	StdDev float64
}

// Summarise computes summary statistics over distances. NaNs are ignored.
func Summarise(distances []float64) Summary {
	x := make([]float64, 0, len(distances))
	for _, d := range distances {
		if !math.IsNaN(d) {
			x = append(x, d)
		}
	}
	if len(x) == 0 {
		return Summary{}
	}
	if !sort.Float64sAreSorted(x) {
		sort.Float64s(x)
	}

	s := Summary{
		Count:  len(x),
		Min:    floats.Min(x),
		Max:    floats.Max(x),
		Median: stat.Quantile(0.5, stat.Empirical, x, nil),
	}
	if len(x) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(x, nil)
	} else {
		s.Mean = x[0]
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("n=%d min=%.3f median=%.3f mean=%.3f sd=%.3f max=%.3f",
		s.Count, s.Min, s.Median, s.Mean, s.StdDev, s.Max)
}
