package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/service/chunker"
	"github.com/secmon-lab/mentorag/pkg/service/citation"
	"github.com/secmon-lab/mentorag/pkg/service/fallback"
	"github.com/secmon-lab/mentorag/pkg/service/llm"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
)

// Apology is returned when every provider failed
const Apology = "I apologize, but I'm currently unable to process your question due to technical issues. Please try again later."

// ErrInvalidInput is returned for requests that cannot be answered at all
var ErrInvalidInput = goerr.New("invalid generation input")

// NoKnowledgeMessage is returned without calling a provider when there is no grounding
func NoKnowledgeMessage(personaName string) string {
	return fmt.Sprintf("Desculpe, não encontrei informações relevantes na base do(a) Dr(a). %s.", personaName)
}

// Input is a grounded generation request
type Input struct {
	Question    string
	Context     []*model.Chunk // ranked, most relevant first
	PersonaName string
	Specialty   string
	Profile     *model.StyleProfile // optional
	Preferred   types.ProviderName  // primary provider; configured order when empty
}

// Service generates grounded answers
type Service interface {
	Generate(ctx context.Context, input Input) (*model.GenerationResult, error)
}

type client struct {
	providers   []llm.Provider
	timeout     time.Duration
	tokenizer   chunker.Tokenizer
	tokenBudget int
}

// Option is a functional option for client configuration
type Option func(*client)

// WithTimeout bounds each provider call
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.timeout = d
	}
}

// WithTokenBudget limits the context to the chunks whose cumulative token count
// fits in budget. The first chunk is always kept.
func WithTokenBudget(tokenizer chunker.Tokenizer, budget int) Option {
	return func(c *client) {
		c.tokenizer = tokenizer
		c.tokenBudget = budget
	}
}

// New creates a generation service over providers in their fallback order
func New(providers []llm.Provider, opts ...Option) (Service, error) {
	if err := llm.Validate(providers); err != nil {
		return nil, err
	}

	c := &client{providers: providers}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate answers the question from the context. Provider failures never
// surface as errors: exhaustion yields Apology with ProviderUsed none.
func (c *client) Generate(ctx context.Context, input Input) (*model.GenerationResult, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "question is empty")
	}

	if len(input.Context) == 0 {
		return &model.GenerationResult{
			Text:         NoKnowledgeMessage(input.PersonaName),
			Citations:    []model.Citation{},
			ProviderUsed: types.ProviderRoleNone,
		}, nil
	}

	chunks := c.fitBudget(input.Context)
	contextText, offered := buildContext(chunks)
	systemPrompt := buildSystemPrompt(input, contextText)
	userPrompt := buildUserPrompt(input.Question)

	order := llm.Order(c.providers, input.Preferred)
	res, err := fallback.New(llm.Backends(order, systemPrompt, userPrompt),
		fallback.WithTimeout[string](c.timeout),
		fallback.WithDegrade(func(ctx context.Context, err *fallback.ExhaustedError) string {
			return Apology
		}),
	).Run(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "generation aborted")
	}

	if res.Degraded {
		return &model.GenerationResult{
			Text:         res.Value,
			Citations:    []model.Citation{},
			ProviderUsed: types.ProviderRoleNone,
		}, nil
	}

	logging.From(ctx).Info("answer generated",
		"provider", res.Backend,
		"position", res.Position,
		"sources", len(offered),
	)

	return &model.GenerationResult{
		Text:         res.Value,
		Citations:    citation.Used(res.Value, offered),
		Sources:      offered,
		ProviderUsed: llm.RoleOf(res.Position),
		ProviderName: order[res.Position].Name,
	}, nil
}

func (c *client) fitBudget(chunks []*model.Chunk) []*model.Chunk {
	if c.tokenizer == nil || c.tokenBudget <= 0 {
		return chunks
	}

	used := 0
	for i, ch := range chunks {
		used += chunker.CountTokens(c.tokenizer, ch.Text)
		if used > c.tokenBudget && i > 0 {
			return chunks[:i]
		}
	}
	return chunks
}
