package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/mentorag/pkg/domain/interfaces"
)

// Gollem generates embeddings through a gollem LLM client
type Gollem struct {
	client    gollem.LLMClient
	dimension int
}

var _ interfaces.Embedder = &Gollem{}

// NewGollem creates an embedder producing vectors of the given dimension
func NewGollem(client gollem.LLMClient, dimension int) (*Gollem, error) {
	if client == nil {
		return nil, goerr.New("LLM client is required")
	}
	if dimension <= 0 {
		return nil, goerr.New("embedding dimension must be positive", goerr.V("dimension", dimension))
	}
	return &Gollem{client: client, dimension: dimension}, nil
}

// Embed returns the vector of text or an error wrapping ErrEmbeddingUnavailable
func (g *Gollem) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := g.client.GenerateEmbedding(ctx, g.dimension, []string{text})
	if err != nil {
		return nil, unavailable(err, "failed to generate embedding")
	}

	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, unavailable(goerr.New("no embedding returned"), "empty embedding response")
	}
	if len(embeddings[0]) != g.dimension {
		return nil, unavailable(goerr.New("unexpected embedding dimension"), "embedding dimension mismatch",
			goerr.V("expected", g.dimension),
			goerr.V("actual", len(embeddings[0])))
	}
	if err := checkFinite(embeddings[0]); err != nil {
		return nil, unavailable(err, "invalid embedding values")
	}

	return toFloat32(embeddings[0]), nil
}
