package domain

// CacheStats reports the state of a score cache.
type CacheStats struct {
	// Embeddings is the number of stored embedding entries.
	Embeddings int64

	// Dimensions is the number of stored dimension values.
	Dimensions int64

	// Hits and Misses count lookups since the cache was opened.
	Hits   int64
	Misses int64

	// Evictions counts entries dropped to stay within the size bound.
	Evictions int64
}

// HitRate returns hits/(hits+misses), or 0 before any lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Add merges two stat snapshots.
func (s CacheStats) Add(other CacheStats) CacheStats {
	return CacheStats{
		Embeddings: s.Embeddings + other.Embeddings,
		Dimensions: s.Dimensions + other.Dimensions,
		Hits:       s.Hits + other.Hits,
		Misses:     s.Misses + other.Misses,
		Evictions:  s.Evictions + other.Evictions,
	}
}
