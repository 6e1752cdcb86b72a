package vptree

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
)

// selectPivot returns the position in idx of the candidate with the largest
// mean distance to a random sample of idx, approximating the most eccentric
// point in O(len(idx)*sampleSize) distance evaluations.
//
// The sample holds min(len(idx), sampleSize) distinct candidates drawn
// without replacement; when idx is no larger than sampleSize the whole set is
// used. Zero distances are left out of a candidate's mean. A candidate at
// distance zero from every sampled point scores -Inf. Ties go to the earliest
// candidate.
func (b *builder) selectPivot(idx []int, rng *rand.Rand, s *scratch) int {
	sample := idx
	if len(idx) > b.sampleSize {
		// Partial Fisher-Yates over a copy so idx keeps its order.
		s.perm = append(s.perm[:0], idx...)
		for i := 0; i < b.sampleSize; i++ {
			j := i + rng.IntN(len(s.perm)-i)
			s.perm[i], s.perm[j] = s.perm[j], s.perm[i]
		}
		sample = s.perm[:b.sampleSize]
	}

	best := -1
	bestScore := math.Inf(-1)
	for pos, c := range idx {
		cp := b.point(c)
		s.buf = s.buf[:0]
		for _, o := range sample {
			if d := b.metric.Distance(cp, b.point(o)); d != 0 {
				s.buf = append(s.buf, d)
			}
		}

		score := math.Inf(-1)
		if len(s.buf) > 0 {
			score = stat.Mean(s.buf, nil)
		}
		if best < 0 || score > bestScore {
			best = pos
			bestScore = score
		}
	}
	return best
}
