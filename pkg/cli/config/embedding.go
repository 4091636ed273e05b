package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/interfaces"
	"github.com/secmon-lab/mentorag/pkg/service/embedding"
	"github.com/urfave/cli/v3"
)

const (
	EmbeddingProviderOpenAI = "openai"
	EmbeddingProviderGemini = "gemini"

	DefaultEmbeddingDimension = 1536
)

// Embedding selects the embedding backend. openai calls the embeddings API
// directly with rate limit retries; gemini goes through the gollem client.
type Embedding struct {
	provider  string
	model     string
	dimension int
	retryMax  time.Duration
}

// Flags returns CLI flags for embedding configuration
func (e *Embedding) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "embedding-provider",
			Usage:       "Embedding backend (openai or gemini)",
			Value:       EmbeddingProviderOpenAI,
			Category:    "Embedding",
			Sources:     cli.EnvVars("MENTORAG_EMBEDDING_PROVIDER"),
			Destination: &e.provider,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Embedding model (openai only)",
			Value:       embedding.DefaultOpenAIModel,
			Category:    "Embedding",
			Sources:     cli.EnvVars("MENTORAG_EMBEDDING_MODEL"),
			Destination: &e.model,
		},
		&cli.IntFlag{
			Name:        "embedding-dimension",
			Usage:       "Embedding vector dimension",
			Value:       DefaultEmbeddingDimension,
			Category:    "Embedding",
			Sources:     cli.EnvVars("MENTORAG_EMBEDDING_DIMENSION"),
			Destination: &e.dimension,
		},
		&cli.DurationFlag{
			Name:        "embedding-retry-max",
			Usage:       "Maximum time spent retrying rate-limited embedding requests",
			Value:       30 * time.Second,
			Category:    "Embedding",
			Sources:     cli.EnvVars("MENTORAG_EMBEDDING_RETRY_MAX"),
			Destination: &e.retryMax,
		},
	}
}

// LogAttrs returns log attributes for the embedding configuration
func (e *Embedding) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("provider", e.provider),
		slog.String("model", e.model),
		slog.Int("dimension", e.dimension),
		slog.Duration("retry_max", e.retryMax),
	}
}

// Configure creates the embedder. Credentials are shared with the LLM configuration.
func (e *Embedding) Configure(ctx context.Context, llmCfg *LLM) (interfaces.Embedder, error) {
	switch e.provider {
	case EmbeddingProviderOpenAI:
		embedder, err := embedding.NewOpenAI(llmCfg.OpenAIAPIKey(), []embedding.OpenAIOption{
			embedding.WithOpenAIModel(e.model),
			embedding.WithOpenAIDimension(e.dimension),
			embedding.WithRetry(500*time.Millisecond, e.retryMax),
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI embedder")
		}
		return embedder, nil

	case EmbeddingProviderGemini:
		client, err := llmCfg.Gemini(ctx)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "gemini embeddings require --gemini-project")
		}
		embedder, err := embedding.NewGollem(client, e.dimension)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini embedder")
		}
		return embedder, nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid embedding provider",
			goerr.V(FieldKey, "embedding-provider"),
			goerr.V(ValueKey, e.provider))
	}
}
