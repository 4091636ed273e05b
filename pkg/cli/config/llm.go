package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/service/llm"
	"github.com/urfave/cli/v3"
)

// LLM holds configuration for the generation and analysis backends.
// A backend is enabled by giving its credentials or project.
type LLM struct {
	openaiAPIKey   string
	openaiModel    string
	claudeAPIKey   string
	claudeModel    string
	geminiProject  string
	geminiLocation string
	geminiModel    string
	preferred      string
}

// Flags returns CLI flags for LLM configuration
func (l *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("MENTORAG_OPENAI_API_KEY", "OPENAI_API_KEY"),
			Destination: &l.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "openai-model",
			Usage:       "OpenAI chat model",
			Category:    "LLM",
			Sources:     cli.EnvVars("MENTORAG_OPENAI_MODEL"),
			Destination: &l.openaiModel,
		},
		&cli.StringFlag{
			Name:        "claude-api-key",
			Usage:       "Anthropic API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("MENTORAG_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"),
			Destination: &l.claudeAPIKey,
		},
		&cli.StringFlag{
			Name:        "claude-model",
			Usage:       "Claude model",
			Category:    "LLM",
			Sources:     cli.EnvVars("MENTORAG_CLAUDE_MODEL"),
			Destination: &l.claudeModel,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "LLM",
			Sources:     cli.EnvVars("MENTORAG_GEMINI_PROJECT"),
			Destination: &l.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Category:    "LLM",
			Sources:     cli.EnvVars("MENTORAG_GEMINI_LOCATION"),
			Destination: &l.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model",
			Category:    "LLM",
			Sources:     cli.EnvVars("MENTORAG_GEMINI_MODEL"),
			Destination: &l.geminiModel,
		},
		&cli.StringFlag{
			Name:        "preferred-provider",
			Usage:       "Provider tried first (openai, claude or gemini)",
			Value:       string(types.ProviderOpenAI),
			Category:    "LLM",
			Sources:     cli.EnvVars("MENTORAG_PREFERRED_PROVIDER"),
			Destination: &l.preferred,
		},
	}
}

// LogAttrs returns log attributes for the LLM configuration. Keys are never logged.
func (l *LLM) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Bool("openai", l.openaiAPIKey != ""),
		slog.String("openai_model", l.openaiModel),
		slog.Bool("claude", l.claudeAPIKey != ""),
		slog.String("claude_model", l.claudeModel),
		slog.String("gemini_project", l.geminiProject),
		slog.String("gemini_location", l.geminiLocation),
		slog.String("preferred", l.preferred),
	}
}

// OpenAIAPIKey returns the OpenAI key shared with the direct embedding client
func (l *LLM) OpenAIAPIKey() string {
	return l.openaiAPIKey
}

// Preferred returns the provider tried first
func (l *LLM) Preferred() (types.ProviderName, error) {
	name, err := types.ParseProviderName(l.preferred)
	if err != nil {
		return "", goerr.Wrap(ErrUnknownProvider, "invalid preferred provider", goerr.V(ProviderKey, l.preferred))
	}
	return name, nil
}

// Gemini creates a Gemini client. It returns nil if no project is configured.
func (l *LLM) Gemini(ctx context.Context) (gollem.LLMClient, error) {
	if l.geminiProject == "" {
		return nil, nil
	}

	var opts []gemini.Option
	if l.geminiModel != "" {
		opts = append(opts, gemini.WithModel(l.geminiModel))
	}
	client, err := gemini.New(ctx, l.geminiProject, l.geminiLocation, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}
	return client, nil
}

// Configure creates a client for every configured backend, ordered openai,
// claude, gemini. The preferred provider is moved first per request.
func (l *LLM) Configure(ctx context.Context) ([]llm.Provider, error) {
	var providers []llm.Provider

	if l.openaiAPIKey != "" {
		var opts []openai.Option
		if l.openaiModel != "" {
			opts = append(opts, openai.WithModel(l.openaiModel))
		}
		client, err := openai.New(ctx, l.openaiAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client")
		}
		providers = append(providers, llm.Provider{Name: types.ProviderOpenAI, Client: client})
	}

	if l.claudeAPIKey != "" {
		var opts []claude.Option
		if l.claudeModel != "" {
			opts = append(opts, claude.WithModel(l.claudeModel))
		}
		client, err := claude.New(ctx, l.claudeAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Claude client")
		}
		providers = append(providers, llm.Provider{Name: types.ProviderClaude, Client: client})
	}

	client, err := l.Gemini(ctx)
	if err != nil {
		return nil, err
	}
	if client != nil {
		providers = append(providers, llm.Provider{Name: types.ProviderGemini, Client: client})
	}

	if len(providers) == 0 {
		return nil, goerr.Wrap(ErrNoProvider, "set an OpenAI key, a Claude key or a Gemini project")
	}
	return providers, nil
}
