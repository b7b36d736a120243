package relpos

import "sort"

// Reduce keeps one representative of each {v, −v} pair produced by Scan.
//
// The vectors are copied and stable-sorted one axis at a time, least
// significant first (Z for 3D, then Y, then X), which leaves them in
// lexicographic order with X dominant. A vector and its negation then fall on
// opposite sides of the centre. The sorted slice is split at its midpoint with
// any odd element going to the first half, and the second half is returned,
// so the result always holds len(vectors)/2 vectors.
//
// Reduce applies to single-set output only; cross-set vectors have no pair
// symmetry.
func Reduce(vectors []Vector, dims int) []Vector {
	sorted := make([]Vector, len(vectors))
	copy(sorted, vectors)

	if dims == 3 {
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Z < sorted[j].Z })
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	mid := (len(sorted) + 1) / 2
	return sorted[mid:]
}
