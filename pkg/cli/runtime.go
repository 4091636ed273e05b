package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/cli/config"
	"github.com/secmon-lab/mentorag/pkg/domain/interfaces"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/service/chunker"
	"github.com/secmon-lab/mentorag/pkg/service/generation"
	"github.com/secmon-lab/mentorag/pkg/service/llm"
	"github.com/secmon-lab/mentorag/pkg/service/profile"
	"github.com/secmon-lab/mentorag/pkg/usecase"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// capability is what a command needs beyond the repository
type capability int

const (
	needEmbedding capability = 1 << iota
	needChunker
	needLLM
)

// runtimeConfig groups the configuration shared by the data commands
type runtimeConfig struct {
	app       config.App
	repo      config.Repository
	llm       config.LLM
	embedding config.Embedding
}

func (r *runtimeConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, r.app.Flags()...)
	flags = append(flags, r.repo.Flags()...)
	flags = append(flags, r.llm.Flags()...)
	flags = append(flags, r.embedding.Flags()...)
	return flags
}

// runtime is the wired application of one command invocation
type runtime struct {
	repo interfaces.Repository
	uc   *usecase.UseCases
}

// Close waits for background profile synthesis, then releases the repository
func (rt *runtime) Close() {
	rt.uc.Wait()
	if err := rt.repo.Close(); err != nil {
		logging.Default().Error("failed to close repository", "error", err.Error())
	}
}

// Configure builds the use cases with the services the command needs. Use
// cases whose services were not requested report usecase.ErrNotConfigured.
func (r *runtimeConfig) Configure(ctx context.Context, needs capability) (*runtime, error) {
	tuning, err := r.app.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load tuning configuration")
	}
	preferred, err := r.llm.Preferred()
	if err != nil {
		return nil, err
	}

	logger := logging.Default()
	logger.LogAttrs(ctx, slog.LevelDebug, "runtime configuration",
		slog.Any("repository", r.repo.LogAttrs()),
		slog.Any("llm", r.llm.LogAttrs()),
		slog.Any("embedding", r.embedding.LogAttrs()),
		slog.Any("tuning", r.app.LogAttrs()),
	)

	opts := []usecase.Option{usecase.WithRAGConfig(tuning.RAG(preferred))}

	if needs&needEmbedding != 0 {
		embedder, err := r.embedding.Configure(ctx, &r.llm)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure embeddings")
		}
		opts = append(opts, usecase.WithEmbedder(embedder))
	}

	// the tokenizer is loaded only when something counts tokens
	var tokenizer chunker.Tokenizer
	if needs&needChunker != 0 || (needs&needLLM != 0 && tuning.Generation.TokenBudget > 0) {
		ch, tok, err := tuning.NewChunker()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure chunker")
		}
		tokenizer = tok
		opts = append(opts, usecase.WithChunker(ch))
	}

	if needs&needLLM != 0 {
		llmOpts, err := r.llmOptions(ctx, tuning, tokenizer, preferred)
		if err != nil {
			return nil, err
		}
		opts = append(opts, llmOpts...)
	}

	repo, err := r.repo.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize repository")
	}

	return &runtime{
		repo: repo,
		uc:   usecase.New(repo, opts...),
	}, nil
}

func (r *runtimeConfig) llmOptions(ctx context.Context, tuning *config.Tuning, tokenizer chunker.Tokenizer, preferred types.ProviderName) ([]usecase.Option, error) {
	providers, err := r.llm.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure LLM providers")
	}

	genOpts, err := tuning.GenerationOptions(tokenizer)
	if err != nil {
		return nil, err
	}
	gen, err := generation.New(providers, genOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create generation service")
	}

	profOpts, err := tuning.ProfileOptions()
	if err != nil {
		return nil, err
	}
	prof, err := profile.New(providers, profOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create profile synthesizer")
	}

	// the LLM entity recognizer runs on the preferred provider
	anon, err := tuning.NewAnonymizer(llm.Order(providers, preferred)[0].Client)
	if err != nil {
		return nil, err
	}

	return []usecase.Option{
		usecase.WithGenerator(gen),
		usecase.WithProfiler(prof),
		usecase.WithAnonymizer(anon),
	}, nil
}

// dataCommand adds the runtime flags to cmd and runs action with the wired
// application, closing it afterwards
func dataCommand(cmd *cli.Command, needs capability, action func(ctx context.Context, c *cli.Command, rt *runtime) error) *cli.Command {
	return dynamicDataCommand(cmd, func() capability { return needs }, action)
}

// dynamicDataCommand is dataCommand for commands whose needs depend on their flags
func dynamicDataCommand(cmd *cli.Command, needs func() capability, action func(ctx context.Context, c *cli.Command, rt *runtime) error) *cli.Command {
	var rc runtimeConfig
	cmd.Flags = append(cmd.Flags, rc.Flags()...)
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		rt, err := rc.Configure(ctx, needs())
		if err != nil {
			return err
		}
		defer rt.Close()
		return action(ctx, c, rt)
	}
	return cmd
}

func mentorFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "mentor",
		Aliases:     []string{"m"},
		Usage:       "Mentor ID",
		Required:    true,
		Sources:     cli.EnvVars("MENTORAG_MENTOR"),
		Destination: dest,
	}
}
