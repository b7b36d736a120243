package relpos

import (
	"math"
	"sort"
)

// Augment derives planar and full-space distances for each vector and sorts
// the records ascending by the trailing distance (XY for 2D, XYZ for 3D).
//
// The sort is a single-key stable sort over whole records; records with equal
// distance keep their input order.
func Augment(vectors []Vector, dims int) FeatureTable {
	records := make([]FeatureRecord, len(vectors))
	for i, v := range vectors {
		x2 := v.X * v.X
		y2 := v.Y * v.Y
		r := FeatureRecord{Vector: v, XY: math.Sqrt(x2 + y2)}
		if dims == 3 {
			z2 := v.Z * v.Z
			r.XZ = math.Sqrt(x2 + z2)
			r.YZ = math.Sqrt(y2 + z2)
			r.XYZ = math.Sqrt(x2 + y2 + z2)
		}
		records[i] = r
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Distance(dims) < records[j].Distance(dims)
	})

	return FeatureTable{Dims: dims, Records: records}
}
