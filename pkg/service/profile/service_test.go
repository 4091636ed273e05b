package profile_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/service/llm"
	"github.com/secmon-lab/mentorag/pkg/service/profile"
	"github.com/secmon-lab/mentorag/pkg/utils/testutil"
)

const analysisText = "WRITING_STYLE: didactic and formal\nTONE: empathetic\nSAMPLE_PHRASES: \"Vamos entender juntos\""

// scriptedClient answers analysis and merge prompts differently
func scriptedClient(analysis string, mergeErr error, merged string) *testutil.MockLLMClient {
	return &testutil.MockLLMClient{
		NewSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &testutil.MockSession{
				GenerateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					if strings.Contains(testutil.InputText(input...), "EXISTING PROFILE") {
						if mergeErr != nil {
							return nil, mergeErr
						}
						return &gollem.Response{Texts: []string{merged}}, nil
					}
					return &gollem.Response{Texts: []string{analysis}}, nil
				},
			}, nil
		},
	}
}

func providers(primary, secondary *testutil.MockLLMClient) []llm.Provider {
	return []llm.Provider{
		{Name: types.ProviderOpenAI, Client: primary},
		{Name: types.ProviderClaude, Client: secondary},
	}
}

func TestSynthesize(t *testing.T) {
	ctx := context.Background()
	input := profile.Input{DocumentText: "Texto do médico.", Name: "Ana Souza", Specialty: "Cardiologia"}

	t.Run("primary analysis", func(t *testing.T) {
		svc, err := profile.New(providers(testutil.TextClient(analysisText), testutil.TextClient("unused")))
		gt.NoError(t, err).Required()

		p, err := svc.Synthesize(ctx, input)
		gt.NoError(t, err).Required()
		gt.Value(t, p.ProfileText).Equal(analysisText)
		gt.Value(t, p.AnalysisSource).Equal(types.AnalysisSourcePrimary)
		gt.Value(t, p.StyleTraits).Equal("formal, didactic, empathetic")
	})

	t.Run("secondary when primary fails", func(t *testing.T) {
		svc, err := profile.New(providers(testutil.FailingClient(errors.New("down")), testutil.TextClient("plain profile")))
		gt.NoError(t, err).Required()

		p, err := svc.Synthesize(ctx, input)
		gt.NoError(t, err).Required()
		gt.Value(t, p.AnalysisSource).Equal(types.AnalysisSourceSecondary)
		gt.Value(t, p.StyleTraits).Equal("professional, medical")
	})

	t.Run("basic profile when every provider fails", func(t *testing.T) {
		down := errors.New("down")
		svc, err := profile.New(providers(testutil.FailingClient(down), testutil.FailingClient(down)))
		gt.NoError(t, err).Required()

		p, err := svc.Synthesize(ctx, input)
		gt.NoError(t, err).Required()
		gt.Value(t, p.AnalysisSource).Equal(types.AnalysisSourceFallback)
		gt.Value(t, p.StyleTraits).Equal("professional, medical, informative")
		gt.String(t, p.ProfileText).Contains("Emphasis on Cardiologia expertise")
		gt.String(t, p.ProfileText).Contains("basic profile for Dr. Ana Souza")
	})

	t.Run("merges with existing profile", func(t *testing.T) {
		svc, err := profile.New(providers(scriptedClient(analysisText, nil, "MERGED technical profile"), testutil.TextClient("unused")))
		gt.NoError(t, err).Required()

		in := input
		in.Existing = &model.StyleProfile{ProfileText: "old profile", AnalysisSource: types.AnalysisSourcePrimary}
		p, err := svc.Synthesize(ctx, in)
		gt.NoError(t, err).Required()
		gt.Value(t, p.ProfileText).Equal("MERGED technical profile")
		gt.Value(t, p.AnalysisSource).Equal(types.AnalysisSourcePrimaryMerged)
		gt.Value(t, p.StyleTraits).Equal("technical")
	})

	t.Run("failed merge keeps new analysis", func(t *testing.T) {
		mergeErr := errors.New("merge failed")
		svc, err := profile.New(providers(
			scriptedClient(analysisText, mergeErr, ""),
			scriptedClient("other", mergeErr, ""),
		))
		gt.NoError(t, err).Required()

		in := input
		in.Existing = &model.StyleProfile{ProfileText: "old profile", AnalysisSource: types.AnalysisSourcePrimary}
		p, err := svc.Synthesize(ctx, in)
		gt.NoError(t, err).Required()
		gt.Value(t, p.ProfileText).Equal(analysisText)
		gt.Value(t, p.AnalysisSource).Equal(types.AnalysisSourcePrimaryMerged)
	})

	t.Run("canceled context is an error", func(t *testing.T) {
		svc, err := profile.New(providers(testutil.TextClient("x"), testutil.TextClient("y")))
		gt.NoError(t, err).Required()

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = svc.Synthesize(cctx, input)
		gt.Error(t, err)
	})

	t.Run("extra trait vocabulary", func(t *testing.T) {
		svc, err := profile.New(
			providers(testutil.TextClient("Uses humor and storytelling"), testutil.TextClient("unused")),
			profile.WithTraits([]profile.Trait{{Tag: "storyteller", Keywords: []string{"storytelling"}}}),
		)
		gt.NoError(t, err).Required()

		p, err := svc.Synthesize(ctx, input)
		gt.NoError(t, err).Required()
		gt.Value(t, p.StyleTraits).Equal("storyteller")
	})
}

func TestExtractTraits(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "Formal and Educational", want: "formal, didactic"},
		{text: "compassionate and scientific, loves analogies", want: "empathetic, technical, uses_analogies"},
		{text: "nothing notable", want: "professional, medical"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			gt.Value(t, profile.ExtractTraits(tt.text, profile.DefaultTraits)).Equal(tt.want)
		})
	}
}

func TestPrompts(t *testing.T) {
	t.Run("analysis prompt truncates long documents", func(t *testing.T) {
		long := strings.Repeat("é", profile.AnalysisWindow+500)
		truncated := profile.Truncate(long, profile.AnalysisWindow)
		gt.Value(t, len([]rune(truncated))).Equal(profile.AnalysisWindow)

		prompt := profile.BuildAnalysisPrompt(truncated, "Ana", "Cardiologia")
		gt.String(t, prompt).Contains("WRITING_STYLE")
		gt.String(t, prompt).Contains("SAMPLE_PHRASES")
		gt.String(t, prompt).Contains("Portuguese (Brazil)")
	})

	t.Run("merge prompt prefers repeated patterns", func(t *testing.T) {
		prompt := profile.BuildMergePrompt("old", "new", "Ana", "Cardiologia")
		gt.String(t, prompt).Contains("favor patterns seen multiple times")
		gt.String(t, prompt).Contains("EXISTING PROFILE:\nold")
	})

	t.Run("system prompt carries profile and language rule", func(t *testing.T) {
		sp := profile.SystemPrompt(&model.StyleProfile{ProfileText: "TONE: calm"}, "Ana", "Cardiologia")
		gt.String(t, sp).Contains("PERSONALITY PROFILE:\nTONE: calm")
		gt.String(t, sp).Contains("[source_N]")
		gt.String(t, sp).Contains("PORTUGUÊS DO BRASIL")
	})
}
