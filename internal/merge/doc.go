// Package merge assembles composite entity views from the backend's
// scattered collections. A facility's attributes, features, occupancy
// counters and contacts live behind separate endpoints; the merger fans
// out to all of them in parallel, tolerates partial failure, and folds
// the results into one composite record under fixed property names.
//
// A short-lived advisory cache absorbs the request amplification this
// causes (one gateway request becomes up to seven upstream calls).
package merge
