package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/perpl/internal/relpos"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestEmptyAnalysisConfig_Defaults(t *testing.T) {
	cfg := EmptyAnalysisConfig()

	if cfg.GetFilterDist() != 100 {
		t.Errorf("GetFilterDist() = %v, want 100", cfg.GetFilterDist())
	}
	if cfg.GetDims() != 2 {
		t.Errorf("GetDims() = %d, want 2", cfg.GetDims())
	}
	if cfg.GetChannelMode() != relpos.ChannelNone {
		t.Errorf("GetChannelMode() = %v, want none", cfg.GetChannelMode())
	}
	if cfg.GetWarnFilterDist() != 500 {
		t.Errorf("GetWarnFilterDist() = %v, want 500", cfg.GetWarnFilterDist())
	}
	if cfg.GetProgressEvery() != relpos.DefaultProgressEvery {
		t.Errorf("GetProgressEvery() = %d, want %d", cfg.GetProgressEvery(), relpos.DefaultProgressEvery)
	}
	if cfg.GetBinWidth() != 1 {
		t.Errorf("GetBinWidth() = %v, want 1", cfg.GetBinWidth())
	}
	if cfg.GetMaxDistance() != cfg.GetFilterDist() {
		t.Errorf("GetMaxDistance() = %v, want filter distance", cfg.GetMaxDistance())
	}
	if cfg.GetRequirePoints() {
		t.Error("GetRequirePoints() = true, want false")
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults file is invalid: %v", err)
	}
	if cfg.FilterDist == nil {
		t.Error("defaults file should set filter_dist")
	}
}

func TestLoadAnalysisConfig(t *testing.T) {
	path := writeConfig(t, "run.json", `{
  "filter_dist": 250,
  "dims": 3,
  "channel_mode": "pair",
  "from_channel": 1,
  "to_channel": 2,
  "bin_width": 5
}`)

	cfg, err := LoadAnalysisConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	rc := cfg.ToRelpos()
	if rc.FilterDist != 250 || rc.Dims != 3 {
		t.Errorf("ToRelpos() = %+v, want filter 250 dims 3", rc)
	}
	if rc.Mode != relpos.ChannelPair || rc.From != 1 || rc.To != 2 {
		t.Errorf("ToRelpos() channels = %v %v→%v, want pair 1→2", rc.Mode, rc.From, rc.To)
	}
	if cfg.GetBinWidth() != 5 {
		t.Errorf("GetBinWidth() = %v, want 5", cfg.GetBinWidth())
	}
	if err := rc.Validate(); err != nil {
		t.Errorf("relpos config invalid: %v", err)
	}
}

func TestLoadAnalysisConfig_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "run.yaml", `{}`, "must be a .json file"},
		{"bad json", "bad.json", `{"filter_dist":`, "malformed analysis config"},
		{"misspelt key", "typo.json", `{"filter_distance": 50}`, "unknown field"},
		{"too large", "big.json", `{"dims": 2}` + strings.Repeat(" ", maxConfigBytes), "exceeds"},
		{"negative filter", "neg.json", `{"filter_dist": -1}`, "filter_dist must be positive"},
		{"bad dims", "dims.json", `{"dims": 4}`, "dims must be 2 or 3"},
		{"unknown mode", "mode.json", `{"channel_mode": "many"}`, "unknown channel mode"},
		{"single without from", "single.json", `{"channel_mode": "single"}`, "requires from_channel"},
		{"pair without to", "pair.json", `{"channel_mode": "pair", "from_channel": 1}`, "requires to_channel"},
		{"zero bin width", "bin.json", `{"bin_width": 0}`, "bin_width must be positive"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.file, tc.body)
			_, err := LoadAnalysisConfig(path)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tc.wantErr)
			}
		})
	}

	if _, err := LoadAnalysisConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PERPL_FILTER_DIST", "42.5")
	t.Setenv("PERPL_DIMS", "3")
	t.Setenv("PERPL_CHANNELS", "1, 2")
	t.Setenv("PERPL_BIN_WIDTH", "0.5")

	cfg := EmptyAnalysisConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.GetFilterDist() != 42.5 {
		t.Errorf("GetFilterDist() = %v, want 42.5", cfg.GetFilterDist())
	}
	if cfg.GetDims() != 3 {
		t.Errorf("GetDims() = %d, want 3", cfg.GetDims())
	}
	if cfg.GetChannelMode() != relpos.ChannelPair {
		t.Errorf("GetChannelMode() = %v, want pair", cfg.GetChannelMode())
	}
	if cfg.GetBinWidth() != 0.5 {
		t.Errorf("GetBinWidth() = %v, want 0.5", cfg.GetBinWidth())
	}
	// Unset variables leave defaults alone.
	if cfg.WarnFilterDist != nil {
		t.Errorf("WarnFilterDist = %v, want nil", *cfg.WarnFilterDist)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("PERPL_DIMS", "7")
	if err := EmptyAnalysisConfig().ApplyEnv(); err == nil {
		t.Error("expected validation error for PERPL_DIMS=7")
	}
}

func TestApplyEnv_BadChannels(t *testing.T) {
	t.Setenv("PERPL_CHANNELS", "1,2,3")
	if err := EmptyAnalysisConfig().ApplyEnv(); err == nil {
		t.Error("expected error for three channels")
	}
}

func TestSetChannels(t *testing.T) {
	cfg := EmptyAnalysisConfig()

	if err := cfg.SetChannels([]float64{4}); err != nil {
		t.Fatalf("SetChannels: %v", err)
	}
	if rc := cfg.ToRelpos(); rc.Mode != relpos.ChannelSingle || rc.From != 4 {
		t.Errorf("single: got %v from %v", rc.Mode, rc.From)
	}

	if err := cfg.SetChannels(nil); err != nil {
		t.Fatalf("SetChannels: %v", err)
	}
	if cfg.GetChannelMode() != relpos.ChannelNone || cfg.FromChannel != nil {
		t.Error("SetChannels(nil) should clear the selection")
	}
}

func TestParseChannelList(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  []float64
		expectErr bool
	}{
		{"empty_string", "", nil, false},
		{"single", "3", []float64{3}, false},
		{"pair_with_spaces", " 1 , 2 ", []float64{1, 2}, false},
		{"trailing_comma", "1,", []float64{1}, false},
		{"invalid", "red", nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseChannelList(tc.input)
			if tc.expectErr {
				if err == nil {
					t.Errorf("Expected error for input %q, got nil", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(got) != len(tc.expected) {
				t.Fatalf("got %v, want %v", got, tc.expected)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Errorf("got[%d] = %v, want %v", i, got[i], tc.expected[i])
				}
			}
		})
	}
}
