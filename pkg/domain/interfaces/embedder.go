package interfaces

import "context"

// Embedder converts text into a dense vector. It fails instead of returning
// placeholder vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
