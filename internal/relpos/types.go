package relpos

import "math"

// Point is a single localisation. 2D points leave Z at zero.
type Point struct {
	X, Y, Z float64
	Channel float64 // colour channel label, zero when the data has none
}

// PointSet is an ordered set of points sharing one dimensionality.
type PointSet struct {
	Dims   int // 2 or 3
	Points []Point
}

// Len returns the number of points in the set.
func (ps PointSet) Len() int { return len(ps.Points) }

// Vector is the coordinate-wise difference candidate − reference.
// For 2D data Z is always zero.
type Vector struct {
	X, Y, Z float64
}

// Sub returns q − p as a Vector.
func Sub(q, p Point) Vector {
	return Vector{X: q.X - p.X, Y: q.Y - p.Y, Z: q.Z - p.Z}
}

// IsZero reports whether every component is exactly zero.
func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Neg returns −v.
func (v Vector) Neg() Vector {
	return Vector{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Magnitude returns the Euclidean length of v.
func (v Vector) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// FeatureRecord is a relative vector plus its derived distances.
// XZ, YZ and XYZ are only populated for 3D data.
type FeatureRecord struct {
	Vector
	XY  float64
	XZ  float64
	YZ  float64
	XYZ float64
}

// Distance returns the trailing full-space magnitude: XY for 2D, XYZ for 3D.
func (r FeatureRecord) Distance(dims int) float64 {
	if dims == 3 {
		return r.XYZ
	}
	return r.XY
}

// FeatureTable is the dispatcher output, sorted ascending by Distance.
type FeatureTable struct {
	Dims    int
	Records []FeatureRecord
}

// Len returns the number of records.
func (t FeatureTable) Len() int { return len(t.Records) }

// Columns names the fields returned by Rows, in order.
func (t FeatureTable) Columns() []string {
	if t.Dims == 3 {
		return []string{"x", "y", "z", "xy", "xz", "yz", "xyz"}
	}
	return []string{"x", "y", "xy"}
}

// Rows flattens the table into numeric rows: vector components followed by
// the derived distances.
func (t FeatureTable) Rows() [][]float64 {
	rows := make([][]float64, len(t.Records))
	for i, r := range t.Records {
		if t.Dims == 3 {
			rows[i] = []float64{r.X, r.Y, r.Z, r.XY, r.XZ, r.YZ, r.XYZ}
		} else {
			rows[i] = []float64{r.X, r.Y, r.XY}
		}
	}
	return rows
}

// Column returns one named column of Rows, or false if the name is not one
// of Columns.
func (t FeatureTable) Column(name string) ([]float64, bool) {
	idx := -1
	for i, c := range t.Columns() {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]float64, len(t.Records))
	for i, row := range t.Rows() {
		out[i] = row[idx]
	}
	return out, true
}

// DistanceColumns names the derived distance columns: xy for 2D, and
// xy, xz, yz, xyz for 3D.
func (t FeatureTable) DistanceColumns() []string {
	cols := t.Columns()
	return cols[t.vectorWidth():]
}

func (t FeatureTable) vectorWidth() int {
	if t.Dims == 3 {
		return 3
	}
	return 2
}

// Distances returns the trailing magnitude column. The slice is ascending
// because Augment sorts on this field.
func (t FeatureTable) Distances() []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Distance(t.Dims)
	}
	return out
}
