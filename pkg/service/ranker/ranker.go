package ranker

import (
	"math"
	"sort"
)

// Default parameters per call site
const (
	ChatTopK               = 5
	ChatMinSimilarity      = 0.45
	UniversalTopK          = 15
	UniversalMinSimilarity = 0.35
)

// Match is one ranked candidate
type Match struct {
	Index int // position in the candidate slice
	Score float64
}

// Rank scores every candidate against query by cosine similarity, keeps the topK
// best and then drops those below minSimilarity. The result is always a prefix
// of the full ranking and may be empty.
func Rank(query []float32, candidates [][]float32, topK int, minSimilarity float64) []Match {
	if len(candidates) == 0 || topK <= 0 {
		return []Match{}
	}

	scored := make([]Match, len(candidates))
	for i, c := range candidates {
		scored[i] = Match{Index: i, Score: CosineSimilarity(query, c)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK < len(scored) {
		scored = scored[:topK]
	}

	result := make([]Match, 0, len(scored))
	for _, m := range scored {
		if !(m.Score >= minSimilarity) {
			break
		}
		result = append(result, m)
	}

	return result
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different length, zero norm or non-finite components score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	score := dot / denom
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return score
}
