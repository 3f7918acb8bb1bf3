package stats

// P90 returns the nearest-rank 90th percentile of an ascending-sorted,
// non-empty sample set: the element at index floor((n-1) * 0.9), no
// interpolation. Callers substitute 0 for an empty set instead of
// calling this.
func P90(sorted []int64) int64 {
	idx := int(float64(len(sorted)-1) * 0.9)
	return sorted[idx]
}
