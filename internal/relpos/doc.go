// Package relpos computes relative positions between localisations.
//
// Responsibilities: axis-aligned box neighbour scans within one point set or
// from one set to another, symmetric-pair reduction (sort-and-halve), and the
// derived planar and full-space distances used for histogramming.
// Key types: Point, PointSet, Vector, FeatureRecord, FeatureTable, Config.
//
// The scan is a direct windowed search. Cost is O(N·K) where K is the mean
// number of points inside a filter window, tending to O(N²) when the filter
// distance is large relative to point density. Use EstimateWork before a run
// to decide whether to warn the user.
//
// Dependency rule: no file, plotting or terminal I/O in this package. All
// state is per call and inputs are never mutated.
package relpos
