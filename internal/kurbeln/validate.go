package kurbeln

// IrregularFraction returns the share of adjacent sample pairs whose time
// delta is not exactly one second. Tracks with fewer than two samples
// have no adjacent pairs and report 1.
func IrregularFraction(t Track) float64 {
	if len(t) < 2 {
		return 1
	}
	bad := 0
	for i := 1; i < len(t); i++ {
		if t[i].Time-t[i-1].Time != 1 {
			bad++
		}
	}
	return float64(bad) / float64(len(t)-1)
}

// IsContiguous reports whether a track is regular enough to compare:
// fewer than maxIrregular of its steps may deviate from 1 s.
func IsContiguous(t Track, maxIrregular float64) bool {
	if len(t) < 2 {
		return false
	}
	return IrregularFraction(t) < maxIrregular
}
