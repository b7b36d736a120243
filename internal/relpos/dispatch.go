package relpos

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ChannelMode selects which points take part in a run.
type ChannelMode int

const (
	// ChannelNone uses every point and ignores any channel column.
	ChannelNone ChannelMode = iota
	// ChannelSingle uses only points whose channel equals Config.From.
	ChannelSingle
	// ChannelPair measures from channel Config.From to channel Config.To.
	ChannelPair
)

func (m ChannelMode) String() string {
	switch m {
	case ChannelNone:
		return "none"
	case ChannelSingle:
		return "single"
	case ChannelPair:
		return "pair"
	default:
		return fmt.Sprintf("ChannelMode(%d)", int(m))
	}
}

// ParseChannelMode converts "none", "single" or "pair" (case-insensitive).
// An empty string means ChannelNone.
func ParseChannelMode(s string) (ChannelMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ChannelNone, nil
	case "single", "1":
		return ChannelSingle, nil
	case "pair", "2":
		return ChannelPair, nil
	}
	return ChannelNone, fmt.Errorf("unknown channel mode %q (want none, single or pair)", s)
}

// Config holds the parameters of one relative-position run.
type Config struct {
	FilterDist float64
	Dims       int
	Mode       ChannelMode
	From       float64 // channel measured from (single and pair modes)
	To         float64 // channel measured to (pair mode)

	// RequirePoints turns an empty selection into ErrEmptyInput instead of an
	// empty result.
	RequirePoints bool

	Progress      ProgressFunc
	ProgressEvery int
}

// Validate checks the scalar parameters. Channel selectors are checked
// against the data in Dispatch.
func (c Config) Validate() error {
	if err := validateFilterDist(c.FilterDist); err != nil {
		return err
	}
	if c.Dims != 2 && c.Dims != 3 {
		return fmt.Errorf("%w: dims must be 2 or 3, got %d", ErrInvalidDimensions, c.Dims)
	}
	if c.Mode < ChannelNone || c.Mode > ChannelPair {
		return fmt.Errorf("unknown channel mode %v", c.Mode)
	}
	return nil
}

// ShouldWarn reports whether the filter distance exceeds threshold. A
// non-positive threshold disables the warning.
func (c Config) ShouldWarn(threshold float64) bool {
	return threshold > 0 && c.FilterDist > threshold
}

// Dispatch runs the configured mode over raw rows and returns the feature
// table.
//
// Each row holds Dims coordinates and, when a channel mode is used, a channel
// value in its last column. Single-set modes run Scan then Reduce; pair mode
// runs ScanCross without reduction. All validation happens before scanning and
// no partial table is returned with an error.
func Dispatch(rows [][]float64, cfg Config) (FeatureTable, error) {
	if err := cfg.Validate(); err != nil {
		return FeatureTable{}, err
	}

	if err := checkRowWidths(rows, cfg); err != nil {
		return FeatureTable{}, err
	}

	if len(rows) == 0 {
		if cfg.RequirePoints {
			return FeatureTable{}, ErrEmptyInput
		}
		if cfg.Mode == ChannelNone {
			return FeatureTable{Dims: cfg.Dims, Records: []FeatureRecord{}}, nil
		}
	}

	if cfg.Mode != ChannelNone {
		available := DistinctChannels(rows)
		selectors := []float64{cfg.From}
		if cfg.Mode == ChannelPair {
			selectors = append(selectors, cfg.To)
		}
		for _, c := range selectors {
			if !containsChannel(available, c) {
				return FeatureTable{}, &ChannelError{Channel: c, Available: available}
			}
		}
	}

	scanner := Scanner{
		FilterDist:    cfg.FilterDist,
		Progress:      cfg.Progress,
		ProgressEvery: cfg.ProgressEvery,
	}

	var vectors []Vector
	switch cfg.Mode {
	case ChannelNone:
		set := toPointSet(rows, cfg.Dims, nil)
		raw, err := scanner.Scan(set)
		if err != nil {
			return FeatureTable{}, err
		}
		vectors = Reduce(raw, cfg.Dims)
	case ChannelSingle:
		set := toPointSet(rows, cfg.Dims, &cfg.From)
		raw, err := scanner.Scan(set)
		if err != nil {
			return FeatureTable{}, err
		}
		vectors = Reduce(raw, cfg.Dims)
	case ChannelPair:
		from := toPointSet(rows, cfg.Dims, &cfg.From)
		to := toPointSet(rows, cfg.Dims, &cfg.To)
		raw, err := scanner.ScanCross(from, to)
		if err != nil {
			return FeatureTable{}, err
		}
		vectors = raw
	}

	return Augment(vectors, cfg.Dims), nil
}

func checkRowWidths(rows [][]float64, cfg Config) error {
	need := cfg.Dims
	if cfg.Mode != ChannelNone {
		need = cfg.Dims + 1
	}
	for i, row := range rows {
		if len(row) < need {
			return fmt.Errorf("%w: row %d has %d columns, need %d",
				ErrInvalidDimensions, i, len(row), need)
		}
	}
	return nil
}

// DistinctChannels returns the sorted distinct values of the last column.
// NaN labels are skipped; such rows can never match a channel selector.
func DistinctChannels(rows [][]float64) []float64 {
	seen := make(map[float64]struct{})
	out := make([]float64, 0, 4)
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		c := row[len(row)-1]
		if math.IsNaN(c) {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Float64s(out)
	return out
}

func containsChannel(available []float64, c float64) bool {
	for _, a := range available {
		if a == c {
			return true
		}
	}
	return false
}

// toPointSet copies the first dims columns of each row. When channel is
// non-nil only rows whose last column equals *channel are kept.
func toPointSet(rows [][]float64, dims int, channel *float64) PointSet {
	ps := PointSet{Dims: dims, Points: make([]Point, 0, len(rows))}
	for _, row := range rows {
		var ch float64
		if len(row) > dims {
			ch = row[len(row)-1]
		}
		if channel != nil && ch != *channel {
			continue
		}
		p := Point{X: row[0], Y: row[1], Channel: ch}
		if dims == 3 {
			p.Z = row[2]
		}
		ps.Points = append(ps.Points, p)
	}
	return ps
}
