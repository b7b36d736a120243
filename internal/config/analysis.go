package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/banshee-data/perpl/internal/relpos"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/analysis.defaults.json"

// EnvPrefix is the environment variable prefix read by ApplyEnv.
const EnvPrefix = "PERPL"

// AnalysisConfig is the on-disk configuration of a relative-position run.
// Every field is optional; the Get* methods supply defaults for missing ones
// so partial files are safe.
type AnalysisConfig struct {
	// Scan params
	FilterDist  *float64 `json:"filter_dist,omitempty"`
	Dims        *int     `json:"dims,omitempty"`
	ChannelMode *string  `json:"channel_mode,omitempty"` // "none", "single" or "pair"
	FromChannel *float64 `json:"from_channel,omitempty"`
	ToChannel   *float64 `json:"to_channel,omitempty"`

	// Guard rails
	WarnFilterDist *float64 `json:"warn_filter_dist,omitempty"`
	RequirePoints  *bool    `json:"require_points,omitempty"`
	ProgressEvery  *int     `json:"progress_every,omitempty"`

	// Histogram params
	BinWidth    *float64 `json:"bin_width,omitempty"`
	MaxDistance *float64 `json:"max_distance,omitempty"` // 0 means use filter_dist
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptyAnalysisConfig returns a config with every field unset.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// maxConfigBytes caps the size of an analysis config file.
const maxConfigBytes = 1 << 20

// LoadAnalysisConfig reads a .json analysis config of at most 1MB. Unknown
// keys are rejected so a misspelt parameter cannot silently fall back to its
// default.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if filepath.Ext(cleanPath) != ".json" {
		return nil, fmt.Errorf("analysis config %s must be a .json file", cleanPath)
	}

	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open analysis config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxConfigBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis config %s: %w", cleanPath, err)
	}
	if len(data) > maxConfigBytes {
		return nil, fmt.Errorf("analysis config %s exceeds %d bytes", cleanPath, maxConfigBytes)
	}

	cfg := EmptyAnalysisConfig()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("malformed analysis config %s: %w", cleanPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("analysis config %s: %w", cleanPath, err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching upwards from the
// working directory. Panics if the file cannot be loaded; intended for tests.
func MustLoadDefaultConfig() *AnalysisConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalysisConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the fields that are set.
func (c *AnalysisConfig) Validate() error {
	if c.FilterDist != nil && !(*c.FilterDist > 0) {
		return fmt.Errorf("filter_dist must be positive, got %v", *c.FilterDist)
	}

	if c.Dims != nil && *c.Dims != 2 && *c.Dims != 3 {
		return fmt.Errorf("dims must be 2 or 3, got %d", *c.Dims)
	}

	if c.ChannelMode != nil {
		mode, err := relpos.ParseChannelMode(*c.ChannelMode)
		if err != nil {
			return err
		}
		if mode != relpos.ChannelNone && c.FromChannel == nil {
			return fmt.Errorf("channel_mode %q requires from_channel", *c.ChannelMode)
		}
		if mode == relpos.ChannelPair && c.ToChannel == nil {
			return fmt.Errorf("channel_mode %q requires to_channel", *c.ChannelMode)
		}
	}

	if c.WarnFilterDist != nil && *c.WarnFilterDist < 0 {
		return fmt.Errorf("warn_filter_dist must be non-negative, got %v", *c.WarnFilterDist)
	}

	if c.ProgressEvery != nil && *c.ProgressEvery < 0 {
		return fmt.Errorf("progress_every must be non-negative, got %d", *c.ProgressEvery)
	}

	if c.BinWidth != nil && !(*c.BinWidth > 0) {
		return fmt.Errorf("bin_width must be positive, got %v", *c.BinWidth)
	}

	if c.MaxDistance != nil && *c.MaxDistance < 0 {
		return fmt.Errorf("max_distance must be non-negative, got %v", *c.MaxDistance)
	}

	return nil
}

// GetFilterDist returns the filter_dist value or the default.
func (c *AnalysisConfig) GetFilterDist() float64 {
	if c.FilterDist == nil {
		return 100.0
	}
	return *c.FilterDist
}

// GetDims returns the dims value or the default.
func (c *AnalysisConfig) GetDims() int {
	if c.Dims == nil {
		return 2
	}
	return *c.Dims
}

// GetChannelMode returns the parsed channel_mode, defaulting to none.
// Validate has already rejected unknown modes.
func (c *AnalysisConfig) GetChannelMode() relpos.ChannelMode {
	if c.ChannelMode == nil {
		return relpos.ChannelNone
	}
	mode, err := relpos.ParseChannelMode(*c.ChannelMode)
	if err != nil {
		return relpos.ChannelNone
	}
	return mode
}

// GetWarnFilterDist returns the warn_filter_dist value or the default.
func (c *AnalysisConfig) GetWarnFilterDist() float64 {
	if c.WarnFilterDist == nil {
		return 500.0
	}
	return *c.WarnFilterDist
}

// GetRequirePoints returns the require_points value or the default.
func (c *AnalysisConfig) GetRequirePoints() bool {
	if c.RequirePoints == nil {
		return false
	}
	return *c.RequirePoints
}

// GetProgressEvery returns the progress_every value or the default.
func (c *AnalysisConfig) GetProgressEvery() int {
	if c.ProgressEvery == nil || *c.ProgressEvery == 0 {
		return relpos.DefaultProgressEvery
	}
	return *c.ProgressEvery
}

// GetBinWidth returns the bin_width value or the default.
func (c *AnalysisConfig) GetBinWidth() float64 {
	if c.BinWidth == nil {
		return 1.0
	}
	return *c.BinWidth
}

// GetMaxDistance returns max_distance, falling back to the filter distance.
func (c *AnalysisConfig) GetMaxDistance() float64 {
	if c.MaxDistance == nil || *c.MaxDistance == 0 {
		return c.GetFilterDist()
	}
	return *c.MaxDistance
}

// SetChannels sets channel_mode and the selectors from a list of zero, one or
// two channel values.
func (c *AnalysisConfig) SetChannels(channels []float64) error {
	switch len(channels) {
	case 0:
		c.ChannelMode = ptrString("none")
		c.FromChannel, c.ToChannel = nil, nil
	case 1:
		c.ChannelMode = ptrString("single")
		c.FromChannel, c.ToChannel = ptrFloat64(channels[0]), nil
	case 2:
		c.ChannelMode = ptrString("pair")
		c.FromChannel, c.ToChannel = ptrFloat64(channels[0]), ptrFloat64(channels[1])
	default:
		return fmt.Errorf("at most 2 channels can be analysed, got %d", len(channels))
	}
	return nil
}

// ToRelpos builds the relpos.Config for this configuration. The progress
// callback is left for the caller to attach.
func (c *AnalysisConfig) ToRelpos() relpos.Config {
	cfg := relpos.Config{
		FilterDist:    c.GetFilterDist(),
		Dims:          c.GetDims(),
		Mode:          c.GetChannelMode(),
		RequirePoints: c.GetRequirePoints(),
		ProgressEvery: c.GetProgressEvery(),
	}
	if c.FromChannel != nil {
		cfg.From = *c.FromChannel
	}
	if c.ToChannel != nil {
		cfg.To = *c.ToChannel
	}
	return cfg
}

// envOverrides mirrors the scalar fields that may be set from the
// environment, e.g. PERPL_FILTER_DIST=250. Channels are a comma-separated
// list: PERPL_CHANNELS=1,2.
type envOverrides struct {
	FilterDist     float64 `envconfig:"FILTER_DIST"`
	Dims           int     `envconfig:"DIMS"`
	Channels       string  `envconfig:"CHANNELS"`
	WarnFilterDist float64 `envconfig:"WARN_FILTER_DIST"`
	BinWidth       float64 `envconfig:"BIN_WIDTH"`
	MaxDistance    float64 `envconfig:"MAX_DISTANCE"`
}

// ApplyEnv overlays PERPL_* environment variables onto c and re-validates.
// Zero or empty values leave the existing field untouched.
func (c *AnalysisConfig) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read %s_* environment: %w", EnvPrefix, err)
	}

	if env.FilterDist != 0 {
		c.FilterDist = ptrFloat64(env.FilterDist)
	}
	if env.Dims != 0 {
		c.Dims = ptrInt(env.Dims)
	}
	if env.WarnFilterDist != 0 {
		c.WarnFilterDist = ptrFloat64(env.WarnFilterDist)
	}
	if env.BinWidth != 0 {
		c.BinWidth = ptrFloat64(env.BinWidth)
	}
	if env.MaxDistance != 0 {
		c.MaxDistance = ptrFloat64(env.MaxDistance)
	}
	if env.Channels != "" {
		channels, err := ParseChannelList(env.Channels)
		if err != nil {
			return fmt.Errorf("%s_CHANNELS: %w", EnvPrefix, err)
		}
		if err := c.SetChannels(channels); err != nil {
			return fmt.Errorf("%s_CHANNELS: %w", EnvPrefix, err)
		}
	}

	return c.Validate()
}

// ParseChannelList parses a comma-separated list of channel values.
// Returns nil, nil for empty input.
func ParseChannelList(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid channel '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
