package embedding

import (
	"errors"
	"math"

	"github.com/m-mizutani/goerr/v2"
)

// ErrEmbeddingUnavailable means no vector could be produced for the text.
// Callers surface it as a retryable "temporarily unavailable" condition.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// unavailable wraps cause so that errors.Is matches both the sentinel and the cause
func unavailable(cause error, msg string, opts ...goerr.Option) error {
	return goerr.Wrap(errors.Join(ErrEmbeddingUnavailable, cause), msg, opts...)
}

func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}

// checkFinite rejects vectors carrying NaN or Inf, which would corrupt ranking
func checkFinite(vec []float64) error {
	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return goerr.New("embedding has non-finite component", goerr.V("index", i))
		}
	}
	return nil
}
