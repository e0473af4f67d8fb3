package labels

import (
	"sort"

	"github.com/lepinkainen/videolabeler/video"
)

// Summary counts the labels of a set
type Summary struct {
	Total    int
	Marked   int
	Unmarked int
	Hashed   int
}

// Summarize counts marked, unmarked and hashed records
func Summarize(set Set) Summary {
	s := Summary{Total: len(set)}
	for _, r := range set {
		if r.SpaceBar {
			s.Marked++
		} else {
			s.Unmarked++
		}
		if r.PHash != "" {
			s.Hashed++
		}
	}
	return s
}

// SimilarPair is two records whose first frames look alike
type SimilarPair struct {
	A        Record
	B        Record
	Distance int
}

// Conflicting reports whether the two lookalike videos were labeled differently
func (p SimilarPair) Conflicting() bool { return p.A.SpaceBar != p.B.SpaceBar }

// FindSimilar compares the perceptual hashes of all hashed records pairwise and
// returns the pairs within threshold, closest first. Records without a hash or
// with an unreadable one are skipped.
func FindSimilar(set Set, threshold int) []SimilarPair {
	var hashed []Record
	for _, r := range set {
		if r.PHash != "" {
			hashed = append(hashed, r)
		}
	}

	var pairs []SimilarPair
	for i := 0; i < len(hashed); i++ {
		for j := i + 1; j < len(hashed); j++ {
			distance, err := video.PerceptualDistance(hashed[i].PHash, hashed[j].PHash)
			if err != nil {
				continue
			}
			if distance <= threshold {
				pairs = append(pairs, SimilarPair{A: hashed[i], B: hashed[j], Distance: distance})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Distance < pairs[j].Distance })
	return pairs
}
