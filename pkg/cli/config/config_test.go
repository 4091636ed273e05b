package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mentorag/pkg/cli/config"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
)

func writeTuning(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mentorag.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadTuning(t *testing.T) {
	t.Run("overrides only the given keys", func(t *testing.T) {
		path := writeTuning(t, `
[chunking]
size = 300

[chat]
min_similarity = 0.5

[generation]
timeout = "15s"
token_budget = 3000

[[profile.traits]]
tag = "concise"
keywords = ["concise", "brief"]

[anonymizer]
strategy = "ner"
locations = ["Ribeirão Preto"]
`)
		tuning, err := config.LoadTuning(path)
		gt.NoError(t, err).Required()

		gt.Value(t, tuning.Chunking.Size).Equal(300)
		gt.Value(t, tuning.Chunking.Overlap).Equal(50)
		gt.Value(t, tuning.Chunking.Encoding).Equal("cl100k_base")
		gt.Value(t, tuning.Chat.MinSimilarity).Equal(0.5)
		gt.Value(t, tuning.Chat.TopK).Equal(5)
		gt.Value(t, tuning.Search.TopK).Equal(15)
		gt.Value(t, tuning.Generation.TokenBudget).Equal(3000)
		gt.A(t, tuning.Profile.Traits).Length(1)
		gt.Value(t, tuning.Anonymizer.Strategy).Equal("ner")
		gt.Value(t, tuning.Anonymizer.Recognizer).Equal(config.RecognizerGazetteer)

		timeout, err := tuning.GenerationTimeout()
		gt.NoError(t, err).Required()
		gt.Value(t, timeout).Equal(15 * time.Second)

		rag := tuning.RAG(types.ProviderClaude)
		gt.Value(t, rag.ChatMinSimilarity).Equal(0.5)
		gt.Value(t, rag.SearchChunkLimit).Equal(5000)
		gt.Value(t, rag.PreferredProvider).Equal(types.ProviderClaude)
	})

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "overlap not smaller than size",
			content: "[chunking]\nsize = 50\noverlap = 50\n",
			wantErr: config.ErrInvalidWindow,
		},
		{
			name:    "similarity floor out of range",
			content: "[search]\nmin_similarity = 1.5\n",
			wantErr: config.ErrInvalidThreshold,
		},
		{
			name:    "zero top k",
			content: "[chat]\ntop_k = 0\n",
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "bad timeout",
			content: "[profile]\ntimeout = \"soon\"\n",
			wantErr: config.ErrInvalidDuration,
		},
		{
			name:    "trait shadowing a default tag",
			content: "[[profile.traits]]\ntag = \"formal\"\nkeywords = [\"stiff\"]\n",
			wantErr: config.ErrDuplicateTrait,
		},
		{
			name:    "unknown anonymizer strategy",
			content: "[anonymizer]\nstrategy = \"hash\"\n",
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "unknown recognizer",
			content: "[anonymizer]\nrecognizer = \"spacy\"\n",
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "malformed TOML",
			content: "[chat\ntop_k = 3\n",
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadTuning(writeTuning(t, tt.content))
			gt.Error(t, err).Is(tt.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadTuning(filepath.Join(t.TempDir(), "none.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})
}

func TestDefaultTuning(t *testing.T) {
	tuning := config.DefaultTuning()
	gt.NoError(t, tuning.Validate())

	opts, err := tuning.ProfileOptions()
	gt.NoError(t, err).Required()
	gt.A(t, opts).Length(2)

	// no token budget by default
	genOpts, err := tuning.GenerationOptions(nil)
	gt.NoError(t, err).Required()
	gt.A(t, genOpts).Length(1)
}

func TestTuning_NewAnonymizer(t *testing.T) {
	t.Run("regex", func(t *testing.T) {
		a, err := config.DefaultTuning().NewAnonymizer(nil)
		gt.NoError(t, err).Required()
		gt.Value(t, a.Stats().Strategy).Equal(types.AnonymizerRegex)
	})

	t.Run("ner with gazetteer", func(t *testing.T) {
		tuning := config.DefaultTuning()
		tuning.Anonymizer.Strategy = string(types.AnonymizerNER)
		a, err := tuning.NewAnonymizer(nil)
		gt.NoError(t, err).Required()
		gt.Value(t, a.Stats().Strategy).Equal(types.AnonymizerNER)
	})

	t.Run("llm recognizer needs a client", func(t *testing.T) {
		tuning := config.DefaultTuning()
		tuning.Anonymizer.Strategy = string(types.AnonymizerNER)
		tuning.Anonymizer.Recognizer = config.RecognizerLLM
		_, err := tuning.NewAnonymizer(nil)
		gt.Error(t, err)
	})
}

func TestApp_Configure(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		tuning, err := config.NewAppForTest("", "").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, tuning.Anonymizer.Strategy).Equal(string(types.AnonymizerRegex))
	})

	t.Run("flag overrides the file", func(t *testing.T) {
		path := writeTuning(t, "[anonymizer]\nstrategy = \"regex\"\n")
		tuning, err := config.NewAppForTest(path, "ner").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, tuning.Anonymizer.Strategy).Equal(string(types.AnonymizerNER))
	})

	t.Run("invalid override", func(t *testing.T) {
		_, err := config.NewAppForTest("", "hash").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}
