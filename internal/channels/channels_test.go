package channels

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/perpl/internal/relpos"
)

func TestSelection_Apply(t *testing.T) {
	t.Parallel()
	tests := []struct {
		sel      Selection
		mode     relpos.ChannelMode
		from, to float64
		str      string
	}{
		{nil, relpos.ChannelNone, 0, 0, "all points"},
		{Selection{3}, relpos.ChannelSingle, 3, 0, "channel 3"},
		{Selection{1, 2.5}, relpos.ChannelPair, 1, 2.5, "channel 1 to channel 2.5"},
	}
	for _, tt := range tests {
		var cfg relpos.Config
		tt.sel.Apply(&cfg)
		assert.Equal(t, tt.mode, cfg.Mode)
		assert.Equal(t, tt.from, cfg.From)
		assert.Equal(t, tt.to, cfg.To)
		assert.Equal(t, tt.str, tt.sel.String())
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	available := []float64{0, 1}

	assert.NoError(t, Validate(available, nil))
	assert.NoError(t, Validate(available, Selection{1, 0}))

	err := Validate(available, Selection{0, 5})
	require.ErrorIs(t, err, relpos.ErrInvalidChannelSelector)
	var chErr *relpos.ChannelError
	require.True(t, errors.As(err, &chErr))
	assert.Equal(t, 5.0, chErr.Channel)

	assert.Error(t, Validate(available, Selection{0, 1, 0}))
}

func TestPrompt(t *testing.T) {
	t.Parallel()
	available := []float64{1, 2, 3}

	tests := []struct {
		name    string
		input   string
		want    Selection
		wantErr error
	}{
		{"single", "1\n2\n", Selection{2}, nil},
		{"pair", "2\n3\n1\n", Selection{3, 1}, nil},
		{"retry after bad channel", "1\n9\nyes\n1\n3\n", Selection{3}, nil},
		{"retry after bad count", "5\ny\n2\n1\n2\n", Selection{1, 2}, nil},
		{"decline retry", "1\n9\nno\n", nil, ErrAborted},
		{"eof", "", nil, ErrAborted},
		{"attempts exhausted", "1\n9\ny\n1\n8\ny\n1\n7\n", nil, ErrTooManyAttempts},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			p := Prompter{In: strings.NewReader(tt.input), Out: &out, MaxAttempts: 3}
			got, err := p.Prompt(available)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompt_SingleChannelIsAutomatic(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	got, err := Prompter{In: strings.NewReader(""), Out: &out}.Prompt([]float64{4})
	require.NoError(t, err)
	assert.Equal(t, Selection{4}, got)
	assert.Contains(t, out.String(), "Using the only colour channel: 4")
}

func TestPrompt_ReportsInvalidChannel(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	_, err := Prompter{In: strings.NewReader("1\n9\nn\n"), Out: &out}.Prompt([]float64{1, 2})
	assert.ErrorIs(t, err, ErrAborted)
	assert.Contains(t, out.String(), "channel 9 is not one of the colour channel values [1, 2]")
}

func TestPrompt_NoChannels(t *testing.T) {
	t.Parallel()
	_, err := Prompter{In: strings.NewReader(""), Out: &bytes.Buffer{}}.Prompt(nil)
	assert.ErrorIs(t, err, relpos.ErrInvalidChannelSelector)
}
