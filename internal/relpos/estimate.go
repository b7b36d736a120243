package relpos

import "math"

// WorkEstimate is a pre-flight guess at scan cost, assuming points are spread
// uniformly over their bounding box.
type WorkEstimate struct {
	Points int
	// Density is points per unit area (2D) or volume (3D).
	Density float64
	// WindowVolume is the area or volume of one filter window, (2d)^dims.
	WindowVolume float64
	// NeighboursPerPoint is the expected number of other points per window.
	NeighboursPerPoint float64
	// RawVectors is the expected size of the unreduced single-set output.
	RawVectors float64
}

// EstimateWork estimates the single-set workload for points at filterDist.
// Degenerate extents (all points on a line or plane) are padded by the window
// width so the estimate stays finite.
func EstimateWork(points PointSet, filterDist float64) (WorkEstimate, error) {
	if err := validateFilterDist(filterDist); err != nil {
		return WorkEstimate{}, err
	}
	n := points.Len()
	est := WorkEstimate{Points: n, WindowVolume: math.Pow(2*filterDist, float64(points.Dims))}
	if n < 2 {
		return est, nil
	}

	minP, maxP := points.Points[0], points.Points[0]
	for _, p := range points.Points[1:] {
		minP.X, maxP.X = math.Min(minP.X, p.X), math.Max(maxP.X, p.X)
		minP.Y, maxP.Y = math.Min(minP.Y, p.Y), math.Max(maxP.Y, p.Y)
		minP.Z, maxP.Z = math.Min(minP.Z, p.Z), math.Max(maxP.Z, p.Z)
	}

	extent := func(lo, hi float64) float64 {
		return math.Max(hi-lo, 2*filterDist)
	}
	volume := extent(minP.X, maxP.X) * extent(minP.Y, maxP.Y)
	if points.Dims == 3 {
		volume *= extent(minP.Z, maxP.Z)
	}

	est.Density = float64(n) / volume
	est.NeighboursPerPoint = math.Min(est.Density*est.WindowVolume, float64(n-1))
	est.RawVectors = float64(n) * est.NeighboursPerPoint
	return est, nil
}

// EstimateRows estimates the work Dispatch would do for rows under cfg. In
// channel modes only the reference channel is counted.
func EstimateRows(rows [][]float64, cfg Config) (WorkEstimate, error) {
	if err := cfg.Validate(); err != nil {
		return WorkEstimate{}, err
	}
	if err := checkRowWidths(rows, cfg); err != nil {
		return WorkEstimate{}, err
	}
	var channel *float64
	if cfg.Mode != ChannelNone {
		channel = &cfg.From
	}
	return EstimateWork(toPointSet(rows, cfg.Dims, channel), cfg.FilterDist)
}
