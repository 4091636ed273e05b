package profile

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/service/fallback"
	"github.com/secmon-lab/mentorag/pkg/service/llm"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
)

// AnalysisWindow is the number of characters of a document sent for analysis
const AnalysisWindow = 10000

// Input is a profile synthesis request
type Input struct {
	DocumentText string
	Name         string
	Specialty    string
	Existing     *model.StyleProfile // merged into when present
}

// Service synthesizes style profiles
type Service interface {
	// Synthesize always yields a profile unless ctx is canceled
	Synthesize(ctx context.Context, input Input) (*model.StyleProfile, error)
}

type client struct {
	providers []llm.Provider
	timeout   time.Duration
	traits    []Trait
	now       func() time.Time
}

// Option is a functional option for client configuration
type Option func(*client)

// WithTimeout bounds each provider call
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.timeout = d
	}
}

// WithTraits appends tags to the trait vocabulary
func WithTraits(traits []Trait) Option {
	return func(c *client) {
		c.traits = append(c.traits, traits...)
	}
}

// New creates a profile synthesizer over providers in their fallback order
func New(providers []llm.Provider, opts ...Option) (Service, error) {
	if err := llm.Validate(providers); err != nil {
		return nil, err
	}

	c := &client{
		providers: llm.Order(providers, ""),
		traits:    append([]Trait{}, DefaultTraits...),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *client) Synthesize(ctx context.Context, input Input) (*model.StyleProfile, error) {
	logger := logging.From(ctx)
	text := truncate(input.DocumentText, AnalysisWindow)

	analysis, err := fallback.New(
		llm.Backends(c.providers, analysisSystemPrompt, buildAnalysisPrompt(text, input.Name, input.Specialty)),
		fallback.WithTimeout[string](c.timeout),
	).Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, goerr.Wrap(ctx.Err(), "profile synthesis canceled")
		}
		logger.Warn("profile analysis failed on every provider, using basic profile", "error", err)
		return &model.StyleProfile{
			ProfileText:    BasicProfile(input.Name, input.Specialty),
			StyleTraits:    fallbackTraits,
			AnalysisSource: types.AnalysisSourceFallback,
			CreatedAt:      c.now().UTC(),
		}, nil
	}

	source := types.AnalysisSourceFromRole(llm.RoleOf(analysis.Position))
	profileText := analysis.Value

	if input.Existing != nil {
		profileText = c.merge(ctx, input, analysis.Value)
		source = source.Merged()
	}

	return &model.StyleProfile{
		ProfileText:    profileText,
		StyleTraits:    ExtractTraits(profileText, c.traits),
		AnalysisSource: source,
		CreatedAt:      c.now().UTC(),
	}, nil
}

// merge returns the merged profile, or the new analysis verbatim when merging fails
func (c *client) merge(ctx context.Context, input Input, analysis string) string {
	prompt := buildMergePrompt(input.Existing.ProfileText, analysis, input.Name, input.Specialty)

	merged, err := fallback.New(
		llm.Backends(c.providers, mergeSystemPrompt, prompt),
		fallback.WithTimeout[string](c.timeout),
	).Run(ctx)
	if err != nil {
		logging.From(ctx).Warn("profile merge failed, keeping new analysis", "error", err)
		return analysis
	}

	return merged.Value
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
