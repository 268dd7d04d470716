package kurbeln

// Synchronize walks two projected tracks with one cursor each and pairs
// up fixes that share a timestamp. A Segment grows only while both
// tracks advance together one second at a time; any mismatch closes it.
// Returns nil when the time ranges of a and b do not overlap.
//
// The result does not depend on argument order beyond which side of each
// pair is A and which is B.
func Synchronize(a, b []ProjectedSample) []Segment {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	if a[len(a)-1].Time < b[0].Time || b[len(b)-1].Time < a[0].Time {
		return nil
	}

	var (
		segs []Segment
		cur  Segment
	)
	closeSeg := func() {
		if len(cur) > 0 {
			segs = append(segs, cur)
			cur = nil
		}
	}

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ta, tb := a[i].Time, b[j].Time
		switch {
		case ta == tb:
			if len(cur) > 0 && ta != cur[len(cur)-1].Time()+1 {
				closeSeg()
			}
			cur = append(cur, AlignedPair{A: a[i], B: b[j]})
			i++
			j++
		case ta < tb:
			closeSeg()
			i++
		default:
			closeSeg()
			j++
		}
	}
	closeSeg()

	diagf("synchronized %d+%d fixes into %d segments", len(a), len(b), len(segs))
	return segs
}
