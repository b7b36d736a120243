package pointio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var npyMagic = []byte("\x93NUMPY")

var (
	npyDescrRe   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	npyFortranRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	npyShapeRe   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// ErrUnsupportedNPY is returned for .npy files that are not 2D numeric arrays.
var ErrUnsupportedNPY = errors.New("unsupported npy array")

// ReadNPY parses a NumPy .npy file holding a 2D array of little-endian floats
// or integers (f8, f4, i8, i4). Fortran-ordered arrays are transposed into
// rows.
func ReadNPY(r io.Reader) (Table, error) {
	br := bufio.NewReader(r)

	prefix := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(br, prefix); err != nil {
		return Table{}, fmt.Errorf("failed to read npy preamble: %w", err)
	}
	if !bytes.Equal(prefix[:len(npyMagic)], npyMagic) {
		return Table{}, fmt.Errorf("%w: bad magic", ErrUnsupportedNPY)
	}

	var headerLen int
	switch major := prefix[len(npyMagic)]; major {
	case 1:
		var n uint16
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return Table{}, fmt.Errorf("failed to read npy header length: %w", err)
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return Table{}, fmt.Errorf("failed to read npy header length: %w", err)
		}
		headerLen = int(n)
	default:
		return Table{}, fmt.Errorf("%w: format version %d", ErrUnsupportedNPY, major)
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(br, header); err != nil {
		return Table{}, fmt.Errorf("failed to read npy header: %w", err)
	}
	descr, fortran, rows, cols, err := parseNPYHeader(string(header))
	if err != nil {
		return Table{}, err
	}

	decode, size, err := npyDecoder(descr)
	if err != nil {
		return Table{}, err
	}

	data := make([]byte, rows*cols*size)
	if _, err := io.ReadFull(br, data); err != nil {
		return Table{}, fmt.Errorf("failed to read npy data: %w", err)
	}

	t := Table{Rows: make([][]float64, rows)}
	for i := range t.Rows {
		t.Rows[i] = make([]float64, cols)
	}
	for k := 0; k < rows*cols; k++ {
		i, j := k/cols, k%cols
		if fortran {
			i, j = k%rows, k/rows
		}
		t.Rows[i][j] = decode(data[k*size : (k+1)*size])
	}
	return t, nil
}

func parseNPYHeader(h string) (descr string, fortran bool, rows, cols int, err error) {
	m := npyDescrRe.FindStringSubmatch(h)
	if m == nil {
		return "", false, 0, 0, fmt.Errorf("%w: missing descr", ErrUnsupportedNPY)
	}
	descr = m[1]

	if m := npyFortranRe.FindStringSubmatch(h); m != nil {
		fortran = m[1] == "True"
	}

	m = npyShapeRe.FindStringSubmatch(h)
	if m == nil {
		return "", false, 0, 0, fmt.Errorf("%w: missing shape", ErrUnsupportedNPY)
	}
	var dims []int
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, convErr := strconv.Atoi(part)
		if convErr != nil {
			return "", false, 0, 0, fmt.Errorf("%w: shape %q", ErrUnsupportedNPY, m[1])
		}
		dims = append(dims, n)
	}
	if len(dims) != 2 {
		return "", false, 0, 0, fmt.Errorf("%w: want 2D array, got shape (%s)", ErrUnsupportedNPY, m[1])
	}
	return descr, fortran, dims[0], dims[1], nil
}

func npyDecoder(descr string) (func([]byte) float64, int, error) {
	le := binary.LittleEndian
	switch descr {
	case "<f8":
		return func(b []byte) float64 { return math.Float64frombits(le.Uint64(b)) }, 8, nil
	case "<f4":
		return func(b []byte) float64 { return float64(math.Float32frombits(le.Uint32(b))) }, 4, nil
	case "<i8":
		return func(b []byte) float64 { return float64(int64(le.Uint64(b))) }, 8, nil
	case "<i4":
		return func(b []byte) float64 { return float64(int32(le.Uint32(b))) }, 4, nil
	}
	return nil, 0, fmt.Errorf("%w: dtype %q", ErrUnsupportedNPY, descr)
}
