package relpos

import (
	"fmt"
	"math"
	"sort"
)

// DefaultProgressEvery is how many reference points are processed between
// progress notifications.
const DefaultProgressEvery = 5000

// ProgressFunc receives scan progress: reference points processed so far, the
// total number of reference points, and the number of vectors found so far.
type ProgressFunc func(done, total, found int)

// Scanner finds relative vectors between points that lie inside an
// axis-aligned box of half-width FilterDist around each other.
//
// A pair (p, q) qualifies when |q.X-p.X| < d and |q.Y-p.Y| < d (and
// |q.Z-p.Z| < d for 3D). This is a box filter, not a radius test.
type Scanner struct {
	FilterDist float64

	// Progress, if set, is called every ProgressEvery reference points and
	// once when the scan completes. It never changes the output.
	Progress      ProgressFunc
	ProgressEvery int
}

// Scan runs a single-set scan with no progress reporting.
func Scan(points PointSet, filterDist float64) ([]Vector, error) {
	return Scanner{FilterDist: filterDist}.Scan(points)
}

// ScanCross runs a from→to scan with no progress reporting.
func ScanCross(from, to PointSet, filterDist float64) ([]Vector, error) {
	return Scanner{FilterDist: filterDist}.ScanCross(from, to)
}

// Scan returns q − p for every reference p (in input order) and every other
// point q in the same set inside p's window. Zero vectors, from p itself or
// from coincident duplicates, are dropped. Each unordered pair of distinct
// nearby points therefore appears twice, as v and −v.
func (s Scanner) Scan(points PointSet) ([]Vector, error) {
	if err := validateFilterDist(s.FilterDist); err != nil {
		return nil, err
	}
	if points.Len() < 2 {
		s.report(points.Len(), points.Len(), 0)
		return []Vector{}, nil
	}
	return s.scan(points.Points, points.Points), nil
}

// ScanCross returns q − p for every reference p in from and every q in to
// inside p's window. The relation is directional and no pair symmetry is
// assumed; only exact zero vectors are dropped.
func (s Scanner) ScanCross(from, to PointSet) ([]Vector, error) {
	if from.Dims != to.Dims {
		return nil, fmt.Errorf("%w: from has %d, to has %d", ErrDimensionMismatch, from.Dims, to.Dims)
	}
	if err := validateFilterDist(s.FilterDist); err != nil {
		return nil, err
	}
	if from.Len() == 0 || to.Len() == 0 {
		s.report(from.Len(), from.Len(), 0)
		return []Vector{}, nil
	}
	return s.scan(from.Points, to.Points), nil
}

// scan is shared by both modes. Candidates are located through a window on
// the X-sorted order of targets, then restored to input order so the output
// enumerates exactly as a full linear pass would.
func (s Scanner) scan(refs, targets []Point) []Vector {
	d := s.FilterDist
	every := s.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}

	// NaN coordinates fail every box comparison, so those targets never
	// qualify and are kept out of the sorted window.
	byX := make([]int, 0, len(targets))
	for i, q := range targets {
		if !math.IsNaN(q.X) {
			byX = append(byX, i)
		}
	}
	sort.SliceStable(byX, func(a, b int) bool {
		return targets[byX[a]].X < targets[byX[b]].X
	})

	out := make([]Vector, 0, len(refs))
	window := make([]int, 0, 64)
	for i, p := range refs {
		if hasNaN(p) {
			s.reportEvery(i, every, len(refs), len(out))
			continue
		}
		// fl(q.X - p.X) is monotone in q.X, so the X window is contiguous.
		lo := sort.Search(len(byX), func(k int) bool {
			return targets[byX[k]].X-p.X > -d
		})
		hi := sort.Search(len(byX), func(k int) bool {
			return targets[byX[k]].X-p.X >= d
		})

		window = window[:0]
		for k := lo; k < hi; k++ {
			j := byX[k]
			q := targets[j]
			if math.Abs(q.Y-p.Y) < d && math.Abs(q.Z-p.Z) < d {
				window = append(window, j)
			}
		}
		sort.Ints(window)

		for _, j := range window {
			v := Sub(targets[j], p)
			if v.IsZero() {
				continue
			}
			out = append(out, v)
		}

		s.reportEvery(i, every, len(refs), len(out))
	}
	if len(refs)%every != 0 {
		s.report(len(refs), len(refs), len(out))
	}
	return out
}

// reportEvery reports after reference i when i+1 is a multiple of every.
func (s Scanner) reportEvery(i, every, total, found int) {
	if (i+1)%every == 0 {
		s.report(i+1, total, found)
	}
}

func hasNaN(p Point) bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z)
}

func (s Scanner) report(done, total, found int) {
	if s.Progress != nil {
		s.Progress(done, total, found)
	}
}

func validateFilterDist(d float64) error {
	if !(d > 0) || math.IsInf(d, 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidFilterDistance, d)
	}
	return nil
}
