package kurbeln

// Window is a half-open [Start, End) range of pairs within a Run.
type Window struct {
	Start, End int
}

// Len returns the number of pairs (seconds) covered.
func (w Window) Len() int { return w.End - w.Start }

// LongestWindow finds the longest stretch of run in which the pilots
// held a near constant distance while flying opposing headings often
// enough to be circling the same core:
//
//   - at least cfg.MinSeconds pairs long
//   - max(Distance)-min(Distance) <= cfg.ConstDistanceTolerance
//   - at least cfg.OpposingQuota of the pairs diverge by more than
//     cfg.BearingThreshold degrees
//
// Windows are grown from each start; growth stops at the first band
// violation, or at the first quota violation once the minimum length is
// reached. On equal length the earliest start wins.
func LongestWindow(run Run, cfg Config) (Window, bool) {
	n := len(run)
	var best Window
	found := false

	for i := 0; i < n && n-i > best.Len(); i++ {
		lo, hi := run[i].Distance, run[i].Distance
		opposing := 0
		for j := i; j < n; j++ {
			d := run[j].Distance
			if d < lo {
				lo = d
			}
			if d > hi {
				hi = d
			}
			if hi-lo > cfg.ConstDistanceTolerance {
				tracef("window from %d: band %.0f-%.0fm exceeded at %d", i, lo, hi, j)
				break
			}
			if run[j].BearingDivergence > cfg.BearingThreshold {
				opposing++
			}

			length := j - i + 1
			if length < cfg.MinSeconds {
				continue
			}
			if float64(opposing) < cfg.OpposingQuota*float64(length) {
				tracef("window from %d: %d/%d opposing at %d", i, opposing, length, j)
				break
			}
			if length > best.Len() {
				best = Window{Start: i, End: j + 1}
				found = true
			}
		}
	}
	return best, found
}

// BestWindow runs LongestWindow over every run and returns the index of
// the run holding the longest window. Earlier runs win ties.
func BestWindow(runs []Run, cfg Config) (int, Window, bool) {
	bestRun := -1
	var best Window
	for r, run := range runs {
		if len(run) <= best.Len() || len(run) < cfg.MinSeconds {
			continue
		}
		w, ok := LongestWindow(run, cfg)
		if ok && w.Len() > best.Len() {
			bestRun, best = r, w
		}
	}
	return bestRun, best, bestRun >= 0
}
