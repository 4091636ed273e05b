package generation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/service/generation"
	"github.com/secmon-lab/mentorag/pkg/service/llm"
	"github.com/secmon-lab/mentorag/pkg/utils/testutil"
)

func chunks(texts ...string) []*model.Chunk {
	result := make([]*model.Chunk, len(texts))
	for i, text := range texts {
		result[i] = &model.Chunk{
			ContentID:  model.ContentID("content-" + string(rune('a'+i))),
			MentorID:   "mentor-1",
			Title:      "Manual de Cardiologia",
			ChunkIndex: i,
			Text:       text,
			Embedding:  []float32{1},
		}
	}
	return result
}

func newService(t *testing.T, primary, secondary *testutil.MockLLMClient) generation.Service {
	t.Helper()
	svc, err := generation.New([]llm.Provider{
		{Name: types.ProviderOpenAI, Client: primary},
		{Name: types.ProviderClaude, Client: secondary},
	})
	gt.NoError(t, err).Required()
	return svc
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	input := generation.Input{
		Question:    "Qual a meta de pressão arterial?",
		Context:     chunks("A meta é 130/80 mmHg.", "Em idosos a meta pode ser 140/90."),
		PersonaName: "Ana Souza",
		Specialty:   "Cardiologia",
	}

	t.Run("primary answers", func(t *testing.T) {
		primary := testutil.TextClient("A meta é 130/80 [source_1].")
		secondary := testutil.TextClient("unused")
		res, err := newService(t, primary, secondary).Generate(ctx, input)
		gt.NoError(t, err).Required()
		gt.Value(t, res.ProviderUsed).Equal(types.ProviderRolePrimary)
		gt.Value(t, res.ProviderName).Equal(types.ProviderOpenAI)
		gt.A(t, res.Citations).Length(1)
		gt.Value(t, res.Citations[0].SourceID).Equal(model.ContentID("content-a"))
		gt.Value(t, secondary.Sessions()).Equal(0)
	})

	t.Run("secondary answers when primary fails", func(t *testing.T) {
		res, err := newService(t,
			testutil.FailingClient(errors.New("rate limited")),
			testutil.TextClient("resposta ok"),
		).Generate(ctx, input)
		gt.NoError(t, err).Required()
		gt.Value(t, res.Text).Equal("resposta ok")
		gt.Value(t, res.ProviderUsed).Equal(types.ProviderRoleSecondary)
		gt.Value(t, res.ProviderName).Equal(types.ProviderClaude)
	})

	t.Run("both fail yields apology", func(t *testing.T) {
		down := errors.New("down")
		res, err := newService(t, testutil.FailingClient(down), testutil.FailingClient(down)).Generate(ctx, input)
		gt.NoError(t, err).Required()
		gt.Value(t, res.Text).Equal(generation.Apology)
		gt.Value(t, res.ProviderUsed).Equal(types.ProviderRoleNone)
		gt.A(t, res.Citations).Length(0)
	})

	t.Run("preferred provider is tried first", func(t *testing.T) {
		primary := testutil.TextClient("openai [source_1]")
		secondary := testutil.TextClient("claude [source_1]")
		in := input
		in.Preferred = types.ProviderClaude

		res, err := newService(t, primary, secondary).Generate(ctx, in)
		gt.NoError(t, err).Required()
		gt.Value(t, res.Text).Equal("claude [source_1]")
		gt.Value(t, res.ProviderUsed).Equal(types.ProviderRolePrimary)
		gt.Value(t, primary.Sessions()).Equal(0)
	})

	t.Run("empty context never calls a provider", func(t *testing.T) {
		primary := testutil.TextClient("x")
		secondary := testutil.TextClient("y")
		in := input
		in.Context = nil

		res, err := newService(t, primary, secondary).Generate(ctx, in)
		gt.NoError(t, err).Required()
		gt.Value(t, res.Text).Equal(generation.NoKnowledgeMessage("Ana Souza"))
		gt.Value(t, res.ProviderUsed).Equal(types.ProviderRoleNone)
		gt.Value(t, primary.Sessions()).Equal(0)
		gt.Value(t, secondary.Sessions()).Equal(0)
	})

	t.Run("empty question is invalid input", func(t *testing.T) {
		in := input
		in.Question = "  "
		_, err := newService(t, testutil.TextClient("x"), testutil.TextClient("y")).Generate(ctx, in)
		gt.Error(t, err).Is(generation.ErrInvalidInput)
	})

	t.Run("canceled request is abandoned", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		blocking := &testutil.MockLLMClient{
			NewSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				cancel()
				return nil, ctx.Err()
			},
		}
		_, err := newService(t, blocking, testutil.TextClient("y")).Generate(cctx, input)
		gt.Error(t, err).Is(context.Canceled)
	})

	t.Run("prompt reaches the provider", func(t *testing.T) {
		var got string
		primary := &testutil.MockLLMClient{
			NewSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &testutil.MockSession{
					GenerateContentFn: func(ctx context.Context, in ...gollem.Input) (*gollem.Response, error) {
						got = testutil.InputText(in...)
						return &gollem.Response{Texts: []string{"ok [source_2]"}}, nil
					},
				}, nil
			},
		}
		res, err := newService(t, primary, testutil.TextClient("y")).Generate(ctx, input)
		gt.NoError(t, err).Required()
		gt.String(t, got).Contains("Qual a meta de pressão arterial?")
		gt.A(t, res.Citations).Length(1)
		gt.Value(t, res.Citations[0].SourceID).Equal(model.ContentID("content-b"))
	})
}

func TestTokenBudget(t *testing.T) {
	svc, err := generation.New(
		[]llm.Provider{{Name: types.ProviderOpenAI, Client: testutil.TextClient("ok [source_1] [source_2]")}},
		generation.WithTokenBudget(&spaceTokenizer{}, 5),
	)
	gt.NoError(t, err).Required()

	res, err := svc.Generate(context.Background(), generation.Input{
		Question:    "pergunta",
		Context:     chunks("um dois três", "quatro cinco seis"),
		PersonaName: "Ana",
	})
	gt.NoError(t, err).Required()
	// the second chunk does not fit, so source_2 is not a known source
	gt.A(t, res.Citations).Length(1)
	gt.Value(t, res.Citations[0].SourceID).Equal(model.ContentID("content-a"))

	kept := generation.FitBudget(&spaceTokenizer{}, 3, chunks("a b c", "d"))
	gt.A(t, kept).Length(1)
	kept = generation.FitBudget(&spaceTokenizer{}, 1, chunks("a b c", "d"))
	gt.A(t, kept).Length(1)
	kept = generation.FitBudget(nil, 0, chunks("a", "b", "c"))
	gt.A(t, kept).Length(3)
}

type spaceTokenizer struct{}

func (s *spaceTokenizer) Encode(text string) []int {
	return make([]int, len(strings.Fields(text)))
}

func (s *spaceTokenizer) Decode(tokens []int) string { return "" }

func TestPrompts(t *testing.T) {
	contextText, citations := generation.BuildContext(chunks("primeiro", "segundo"))
	gt.String(t, contextText).Contains("[source_1] primeiro")
	gt.String(t, contextText).Contains("[source_2] segundo")
	gt.A(t, citations).Length(2)
	gt.Value(t, citations[1].Excerpt).Equal("segundo...")

	t.Run("generic directive without profile", func(t *testing.T) {
		sp := generation.BuildSystemPrompt(generation.Input{PersonaName: "Ana"}, contextText)
		gt.String(t, sp).Contains("representing Dr. Ana")
		gt.String(t, sp).Contains("cite the source using [source_N] format")
		gt.String(t, sp).Contains("[source_1] primeiro")
	})

	t.Run("profile leads the directive", func(t *testing.T) {
		sp := generation.BuildSystemPrompt(generation.Input{
			PersonaName: "Ana",
			Specialty:   "Cardiologia",
			Profile:     &model.StyleProfile{ProfileText: "TONE: warm"},
		}, contextText)
		gt.Bool(t, strings.HasPrefix(sp, "You are an AI assistant representing Dr. Ana, a renowned specialist in Cardiologia.")).True()
		gt.String(t, sp).Contains("TONE: warm")
		gt.String(t, sp).Contains("PROVIDED KNOWLEDGE BASE:")
	})

	gt.String(t, generation.BuildUserPrompt("Q?")).Contains("Question: Q?")
}
