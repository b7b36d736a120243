package relpos

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidFilterDistance is returned when the filter distance is not a
	// positive finite number.
	ErrInvalidFilterDistance = errors.New("filter distance must be positive")
	// ErrDimensionMismatch is returned when from/to sets differ in dimensionality.
	ErrDimensionMismatch = errors.New("point sets have different dimensionality")
	// ErrInvalidChannelSelector is returned when a requested channel is absent.
	ErrInvalidChannelSelector = errors.New("channel not present in data")
	// ErrEmptyInput is returned for zero points when Config.RequirePoints is set.
	ErrEmptyInput = errors.New("no points supplied")
	// ErrInvalidDimensions is returned when dims is not 2 or 3, or a row is too
	// short to hold the requested coordinates.
	ErrInvalidDimensions = errors.New("invalid dimensions")
)

// ChannelError reports a requested channel that does not appear in the data.
type ChannelError struct {
	Channel   float64
	Available []float64
}

func (e *ChannelError) Error() string {
	vals := make([]string, len(e.Available))
	for i, c := range e.Available {
		vals[i] = strconv.FormatFloat(c, 'g', -1, 64)
	}
	return fmt.Sprintf("channel %s is not one of the colour channel values [%s]",
		strconv.FormatFloat(e.Channel, 'g', -1, 64), strings.Join(vals, ", "))
}

func (e *ChannelError) Unwrap() error { return ErrInvalidChannelSelector }
