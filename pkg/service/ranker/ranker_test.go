package ranker_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mentorag/pkg/service/ranker"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		s := ranker.CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3})
		gt.Bool(t, math.Abs(s-1) < 1e-9).True()
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		gt.Value(t, ranker.CosineSimilarity([]float32{1, 0}, []float32{0, 1})).Equal(0.0)
	})

	t.Run("length mismatch", func(t *testing.T) {
		gt.Value(t, ranker.CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0})).Equal(0.0)
	})

	t.Run("zero vector", func(t *testing.T) {
		gt.Value(t, ranker.CosineSimilarity([]float32{0, 0}, []float32{1, 0})).Equal(0.0)
	})

	t.Run("non-finite component", func(t *testing.T) {
		nan := float32(math.NaN())
		inf := float32(math.Inf(1))
		gt.Value(t, ranker.CosineSimilarity([]float32{1, 0}, []float32{nan, 0})).Equal(0.0)
		gt.Value(t, ranker.CosineSimilarity([]float32{1, 0}, []float32{inf, 0})).Equal(0.0)
	})
}

func TestRank(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{0, 1},     // 0.0
		{1, 0},     // 1.0
		{1, 1},     // 0.707
		{1, 0.2},   // 0.98
		{-1, 0},    // -1.0
		{0.5, 0.5}, // 0.707
	}

	t.Run("orders by score and truncates to topK", func(t *testing.T) {
		matches := ranker.Rank(query, candidates, 2, 0)
		gt.A(t, matches).Length(2)
		gt.Value(t, matches[0].Index).Equal(1)
		gt.Value(t, matches[1].Index).Equal(3)
	})

	t.Run("floor applies after truncation", func(t *testing.T) {
		matches := ranker.Rank(query, candidates, 10, 0.5)
		gt.A(t, matches).Length(4)
		for _, m := range matches {
			gt.Number(t, m.Score).GreaterOrEqual(0.5)
		}
	})

	t.Run("nothing above floor is an empty result", func(t *testing.T) {
		matches := ranker.Rank([]float32{0, -1}, candidates, 5, 0.45)
		gt.A(t, matches).Length(0)
	})

	t.Run("corrupt vector never passes the floor", func(t *testing.T) {
		nan := float32(math.NaN())
		matches := ranker.Rank([]float32{1, 0}, [][]float32{{nan, 0}, {0, 1}}, 5, 0.45)
		gt.A(t, matches).Length(0)
	})

	t.Run("corrupt vector does not displace valid matches", func(t *testing.T) {
		nan := float32(math.NaN())
		matches := ranker.Rank([]float32{1, 0}, [][]float32{{0, 1}, {nan, 0}, {1, 0.1}, {1, 0}}, 5, 0.45)
		gt.A(t, matches).Length(2).Required()
		gt.Value(t, matches[0].Index).Equal(3)
		gt.Value(t, matches[1].Index).Equal(2)
	})

	t.Run("empty candidates", func(t *testing.T) {
		gt.A(t, ranker.Rank(query, nil, 5, 0.45)).Length(0)
	})

	t.Run("non-positive topK", func(t *testing.T) {
		gt.A(t, ranker.Rank(query, candidates, 0, 0)).Length(0)
	})
}

func TestRank_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		dim := 8
		query := randomVector(r, dim)
		candidates := make([][]float32, r.IntN(40))
		for i := range candidates {
			candidates[i] = randomVector(r, dim)
		}
		topK := r.IntN(10) + 1
		floor := r.Float64()*0.6 - 0.3

		matches := ranker.Rank(query, candidates, topK, floor)
		gt.Number(t, len(matches)).LessOrEqual(topK)

		full := ranker.Rank(query, candidates, len(candidates), math.Inf(-1))
		for i, m := range matches {
			gt.Number(t, m.Score).GreaterOrEqual(floor)
			if i > 0 {
				gt.Number(t, m.Score).LessOrEqual(matches[i-1].Score)
			}
			gt.Value(t, m).Equal(full[i])
		}
	}
}

func randomVector(r *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(r.Float64()*2 - 1)
	}
	return v
}
