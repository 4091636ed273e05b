package config_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mentorag/pkg/cli/config"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
)

func TestLogger_Configure(t *testing.T) {
	t.Run("writes to a file", func(t *testing.T) {
		prev := logging.Default()
		t.Cleanup(func() { logging.SetDefault(prev) })

		path := filepath.Join(t.TempDir(), "mentorag.log")
		closer, err := config.NewLoggerForTest("info", "json", path).Configure()
		gt.NoError(t, err).Required()

		logging.Default().Info("hello", "cpf", "123.456.789-09")
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.String(t, string(data)).Contains("hello")
		gt.Bool(t, strings.Contains(string(data), "123.456.789-09")).False()
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("loud", "console", "stderr").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stderr").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestLLM_Configure(t *testing.T) {
	t.Run("no provider", func(t *testing.T) {
		_, err := config.NewLLMForTest("", "", "", "openai").Configure(context.Background())
		gt.Error(t, err).Is(config.ErrNoProvider)
	})

	t.Run("gemini is optional", func(t *testing.T) {
		client, err := config.NewLLMForTest("", "", "", "openai").Gemini(context.Background())
		gt.NoError(t, err)
		gt.Value(t, client).Nil()
	})

	t.Run("preferred provider", func(t *testing.T) {
		name, err := config.NewLLMForTest("", "", "", "claude").Preferred()
		gt.NoError(t, err).Required()
		gt.Value(t, name).Equal(types.ProviderClaude)

		_, err = config.NewLLMForTest("", "", "", "llama").Preferred()
		gt.Error(t, err).Is(config.ErrUnknownProvider)
	})

	t.Run("flags", func(t *testing.T) {
		var cfg config.LLM
		gt.A(t, cfg.Flags()).Length(8)
	})
}

func TestEmbedding_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("openai needs a key", func(t *testing.T) {
		_, err := config.NewEmbeddingForTest("openai", 1536).Configure(ctx, config.NewLLMForTest("", "", "", "openai"))
		gt.Error(t, err)
	})

	t.Run("openai", func(t *testing.T) {
		e, err := config.NewEmbeddingForTest("openai", 1536).Configure(ctx, config.NewLLMForTest("sk-test", "", "", "openai"))
		gt.NoError(t, err).Required()
		gt.Value(t, e).NotNil()
	})

	t.Run("gemini needs a project", func(t *testing.T) {
		_, err := config.NewEmbeddingForTest("gemini", 768).Configure(ctx, config.NewLLMForTest("", "", "", "openai"))
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := config.NewEmbeddingForTest("cohere", 768).Configure(ctx, config.NewLLMForTest("sk-test", "", "", "openai"))
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestRepository_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest("memory", "").Configure(ctx)
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close())
	})

	t.Run("firestore needs a project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("firestore", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("sqlite", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestRepository_Migrate(t *testing.T) {
	err := config.NewRepositoryForTest("firestore", "").Migrate(context.Background(), true)
	gt.Error(t, err).Is(config.ErrInvalidConfig)
}
