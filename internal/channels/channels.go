// Package channels picks which colour channels a run analyses, either from
// explicit values or by asking the user.
package channels

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/perpl/internal/relpos"
)

// DefaultMaxAttempts bounds how many times Prompt asks before giving up.
const DefaultMaxAttempts = 3

var (
	// ErrAborted is returned when the user declines to retry.
	ErrAborted = errors.New("channel selection aborted")
	// ErrTooManyAttempts is returned when every attempt was invalid.
	ErrTooManyAttempts = errors.New("too many invalid channel selections")
)

// Selection is the resolved channel choice: zero values means every point,
// one means a single channel, two means from→to.
type Selection []float64

// Mode maps the selection onto a relpos channel mode.
func (s Selection) Mode() relpos.ChannelMode {
	switch len(s) {
	case 1:
		return relpos.ChannelSingle
	case 2:
		return relpos.ChannelPair
	default:
		return relpos.ChannelNone
	}
}

// Apply copies the selection into cfg.
func (s Selection) Apply(cfg *relpos.Config) {
	cfg.Mode = s.Mode()
	switch len(s) {
	case 2:
		cfg.From, cfg.To = s[0], s[1]
	case 1:
		cfg.From = s[0]
	}
}

func (s Selection) String() string {
	switch len(s) {
	case 0:
		return "all points"
	case 1:
		return "channel " + formatChannel(s[0])
	default:
		return "channel " + formatChannel(s[0]) + " to channel " + formatChannel(s[1])
	}
}

// Validate checks every selected value against the available channels and
// returns a *relpos.ChannelError for the first one missing.
func Validate(available []float64, sel Selection) error {
	if len(sel) > 2 {
		return fmt.Errorf("at most 2 channels can be analysed, got %d", len(sel))
	}
	for _, c := range sel {
		found := false
		for _, a := range available {
			if a == c {
				found = true
				break
			}
		}
		if !found {
			return &relpos.ChannelError{Channel: c, Available: available}
		}
	}
	return nil
}

// Prompter asks for a channel selection on In and writes questions to Out.
type Prompter struct {
	In          io.Reader
	Out         io.Writer
	MaxAttempts int
}

// Prompt asks how many channels to use and which. With exactly one channel
// in the data it is chosen without asking. Invalid answers are reported and,
// if the user agrees, asked again up to MaxAttempts times.
func (p Prompter) Prompt(available []float64) (Selection, error) {
	if len(available) == 1 {
		fmt.Fprintf(p.Out, "Using the only colour channel: %s\n", formatChannel(available[0]))
		return Selection{available[0]}, nil
	}
	if len(available) == 0 {
		return nil, fmt.Errorf("%w: data has no channel values", relpos.ErrInvalidChannelSelector)
	}

	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	sc := bufio.NewScanner(p.In)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		sel, err := p.ask(sc, available)
		if err == nil {
			return sel, nil
		}
		if errors.Is(err, io.EOF) {
			return nil, ErrAborted
		}
		fmt.Fprintf(p.Out, "%v\n", err)
		if attempt == maxAttempts {
			break
		}
		answer, ok := p.readLine(sc, "Do you want to select a different colour channel value (yes/no)? ")
		if !ok || !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil, ErrAborted
		}
	}
	return nil, ErrTooManyAttempts
}

func (p Prompter) ask(sc *bufio.Scanner, available []float64) (Selection, error) {
	fmt.Fprintf(p.Out, "Available colour channels: %s\n", joinChannels(available))

	line, ok := p.readLine(sc, "How many colour channels would you like to use in the analysis (1 or 2)? ")
	if !ok {
		return nil, io.EOF
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > 2 {
		return nil, fmt.Errorf("the number of colour channels must be 1 or 2, got %q", line)
	}

	questions := []string{"Which colour channel do you want to analyse? "}
	if n == 2 {
		questions = []string{
			"Which colour channel do you want to measure FROM? ",
			"Which colour channel do you want to measure TO? ",
		}
	}

	sel := make(Selection, 0, n)
	for _, q := range questions {
		line, ok := p.readLine(sc, q)
		if !ok {
			return nil, io.EOF
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("channel value must be a number, got %q", line)
		}
		sel = append(sel, v)
	}

	if err := Validate(available, sel); err != nil {
		return nil, err
	}
	return sel, nil
}

func (p Prompter) readLine(sc *bufio.Scanner, prompt string) (string, bool) {
	fmt.Fprint(p.Out, prompt)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

func formatChannel(c float64) string {
	return strconv.FormatFloat(c, 'g', -1, 64)
}

func joinChannels(cs []float64) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = formatChannel(c)
	}
	return strings.Join(parts, ", ")
}
