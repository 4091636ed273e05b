package config

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/service/anonymizer"
	"github.com/secmon-lab/mentorag/pkg/service/chunker"
	"github.com/secmon-lab/mentorag/pkg/service/generation"
	"github.com/secmon-lab/mentorag/pkg/service/profile"
	"github.com/secmon-lab/mentorag/pkg/usecase"
	"github.com/urfave/cli/v3"
)

const (
	RecognizerGazetteer = "gazetteer"
	RecognizerLLM       = "llm"
)

// Tuning is the optional TOML file adjusting retrieval and processing.
// Keys missing from the file keep their default values.
type Tuning struct {
	Chunking   Chunking         `toml:"chunking"`
	Chat       Chat             `toml:"chat"`
	Search     Search           `toml:"search"`
	Ingest     Ingest           `toml:"ingest"`
	Generation Generation       `toml:"generation"`
	Profile    ProfileSynthesis `toml:"profile"`
	Anonymizer Anonymization    `toml:"anonymizer"`
}

// Chunking configures the token windows
type Chunking struct {
	Size     int    `toml:"size"`
	Overlap  int    `toml:"overlap"`
	Encoding string `toml:"encoding"`
}

// Chat configures retrieval for questions to one mentor
type Chat struct {
	TopK          int     `toml:"top_k"`
	MinSimilarity float64 `toml:"min_similarity"`
	ChunkLimit    int     `toml:"chunk_limit"`
}

// Search configures retrieval across every mentor
type Search struct {
	TopK           int     `toml:"top_k"`
	MinSimilarity  float64 `toml:"min_similarity"`
	ChunkLimit     int     `toml:"chunk_limit"`
	Excerpts       int     `toml:"excerpts"`
	ExcerptLength  int     `toml:"excerpt_length"`
	MinQueryLength int     `toml:"min_query_length"`
}

type Ingest struct {
	EmbedConcurrency int `toml:"embed_concurrency"`
}

type Generation struct {
	Timeout     string `toml:"timeout"`
	TokenBudget int    `toml:"token_budget"` // 0 disables the budget
}

type ProfileSynthesis struct {
	Timeout string          `toml:"timeout"`
	Traits  []profile.Trait `toml:"traits"` // added to the default vocabulary
}

type Anonymization struct {
	Strategy            string   `toml:"strategy"`
	Recognizer          string   `toml:"recognizer"`
	CounterCapacity     int      `toml:"counter_capacity"`
	Locations           []string `toml:"locations"`
	InstitutionKeywords []string `toml:"institution_keywords"`
}

// DefaultTuning returns the values used without a tuning file
func DefaultTuning() *Tuning {
	rag := usecase.DefaultRAGConfig()
	return &Tuning{
		Chunking: Chunking{
			Size:     chunker.DefaultChunkSize,
			Overlap:  chunker.DefaultOverlap,
			Encoding: chunker.DefaultEncoding,
		},
		Chat: Chat{
			TopK:          rag.ChatTopK,
			MinSimilarity: rag.ChatMinSimilarity,
			ChunkLimit:    rag.ChatChunkLimit,
		},
		Search: Search{
			TopK:           rag.SearchTopK,
			MinSimilarity:  rag.SearchMinSimilarity,
			ChunkLimit:     rag.SearchChunkLimit,
			Excerpts:       rag.SearchExcerpts,
			ExcerptLength:  rag.SearchExcerptLength,
			MinQueryLength: rag.MinQueryLength,
		},
		Ingest: Ingest{EmbedConcurrency: rag.EmbedConcurrency},
		Generation: Generation{
			Timeout: "60s",
		},
		Profile: ProfileSynthesis{
			Timeout: "120s",
		},
		Anonymizer: Anonymization{
			Strategy:        string(types.AnonymizerRegex),
			Recognizer:      RecognizerGazetteer,
			CounterCapacity: anonymizer.DefaultCounterCapacity,
		},
	}
}

// Validate checks that every value is usable
func (t *Tuning) Validate() error {
	if t.Chunking.Size <= 0 || t.Chunking.Overlap < 0 || t.Chunking.Overlap >= t.Chunking.Size {
		return goerr.Wrap(ErrInvalidWindow, "chunking overlap must be in [0, size)",
			goerr.V("size", t.Chunking.Size),
			goerr.V("overlap", t.Chunking.Overlap))
	}
	if t.Chunking.Encoding == "" {
		return goerr.Wrap(ErrInvalidConfig, "chunking encoding is required")
	}

	for field, v := range map[string]float64{
		"chat.min_similarity":   t.Chat.MinSimilarity,
		"search.min_similarity": t.Search.MinSimilarity,
	} {
		if v < -1 || v > 1 {
			return goerr.Wrap(ErrInvalidThreshold, "similarity floor out of range", goerr.V(FieldKey, field), goerr.V(ValueKey, v))
		}
	}

	for field, v := range map[string]int{
		"chat.top_k":               t.Chat.TopK,
		"chat.chunk_limit":         t.Chat.ChunkLimit,
		"search.top_k":             t.Search.TopK,
		"search.chunk_limit":       t.Search.ChunkLimit,
		"search.excerpts":          t.Search.Excerpts,
		"search.excerpt_length":    t.Search.ExcerptLength,
		"ingest.embed_concurrency": t.Ingest.EmbedConcurrency,
	} {
		if v <= 0 {
			return goerr.Wrap(ErrInvalidConfig, "value must be positive", goerr.V(FieldKey, field), goerr.V(ValueKey, v))
		}
	}
	if t.Search.MinQueryLength < 0 || t.Generation.TokenBudget < 0 {
		return goerr.Wrap(ErrInvalidConfig, "value must not be negative")
	}

	if _, err := t.GenerationTimeout(); err != nil {
		return err
	}
	if _, err := t.ProfileTimeout(); err != nil {
		return err
	}

	tags := make(map[string]bool)
	for _, tr := range profile.DefaultTraits {
		tags[tr.Tag] = true
	}
	for _, tr := range t.Profile.Traits {
		if tr.Tag == "" || len(tr.Keywords) == 0 {
			return goerr.Wrap(ErrInvalidConfig, "trait needs a tag and keywords", goerr.V("tag", tr.Tag))
		}
		if tags[tr.Tag] {
			return goerr.Wrap(ErrDuplicateTrait, "trait tag already defined", goerr.V("tag", tr.Tag))
		}
		tags[tr.Tag] = true
	}

	if !types.AnonymizerStrategy(t.Anonymizer.Strategy).IsValid() {
		return goerr.Wrap(ErrInvalidConfig, "invalid anonymizer strategy", goerr.V(ValueKey, t.Anonymizer.Strategy))
	}
	switch t.Anonymizer.Recognizer {
	case RecognizerGazetteer, RecognizerLLM:
	default:
		return goerr.Wrap(ErrInvalidConfig, "invalid entity recognizer", goerr.V(ValueKey, t.Anonymizer.Recognizer))
	}
	if t.Anonymizer.CounterCapacity <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "anonymizer counter capacity must be positive")
	}

	return nil
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, goerr.Wrap(ErrInvalidDuration, "duration must be positive, e.g. 30s", goerr.V(FieldKey, field), goerr.V(ValueKey, s))
	}
	return d, nil
}

// GenerationTimeout bounds each generation provider call
func (t *Tuning) GenerationTimeout() (time.Duration, error) {
	return parseDuration("generation.timeout", t.Generation.Timeout)
}

// ProfileTimeout bounds each profile analysis call
func (t *Tuning) ProfileTimeout() (time.Duration, error) {
	return parseDuration("profile.timeout", t.Profile.Timeout)
}

// RAG converts the retrieval sections for the use cases
func (t *Tuning) RAG(preferred types.ProviderName) usecase.RAGConfig {
	return usecase.RAGConfig{
		ChatTopK:            t.Chat.TopK,
		ChatMinSimilarity:   t.Chat.MinSimilarity,
		ChatChunkLimit:      t.Chat.ChunkLimit,
		SearchTopK:          t.Search.TopK,
		SearchMinSimilarity: t.Search.MinSimilarity,
		SearchChunkLimit:    t.Search.ChunkLimit,
		SearchExcerpts:      t.Search.Excerpts,
		SearchExcerptLength: t.Search.ExcerptLength,
		MinQueryLength:      t.Search.MinQueryLength,
		EmbedConcurrency:    t.Ingest.EmbedConcurrency,
		PreferredProvider:   preferred,
	}
}

// NewChunker creates the tokenizer and the chunker over it
func (t *Tuning) NewChunker() (*chunker.Chunker, chunker.Tokenizer, error) {
	tokenizer, err := chunker.NewTiktoken(t.Chunking.Encoding)
	if err != nil {
		return nil, nil, err
	}
	c, err := chunker.New(tokenizer,
		chunker.WithChunkSize(t.Chunking.Size),
		chunker.WithOverlap(t.Chunking.Overlap))
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create chunker")
	}
	return c, tokenizer, nil
}

// GenerationOptions returns the generation service options
func (t *Tuning) GenerationOptions(tokenizer chunker.Tokenizer) ([]generation.Option, error) {
	timeout, err := t.GenerationTimeout()
	if err != nil {
		return nil, err
	}
	opts := []generation.Option{generation.WithTimeout(timeout)}
	if t.Generation.TokenBudget > 0 {
		opts = append(opts, generation.WithTokenBudget(tokenizer, t.Generation.TokenBudget))
	}
	return opts, nil
}

// ProfileOptions returns the profile synthesizer options
func (t *Tuning) ProfileOptions() ([]profile.Option, error) {
	timeout, err := t.ProfileTimeout()
	if err != nil {
		return nil, err
	}
	return []profile.Option{
		profile.WithTimeout(timeout),
		profile.WithTraits(t.Profile.Traits),
	}, nil
}

// NewAnonymizer creates the anonymizer. client backs the llm recognizer and
// may be nil otherwise.
func (t *Tuning) NewAnonymizer(client gollem.LLMClient) (*anonymizer.Anonymizer, error) {
	strategy := types.AnonymizerStrategy(t.Anonymizer.Strategy)
	opts := []anonymizer.Option{anonymizer.WithCounterCapacity(t.Anonymizer.CounterCapacity)}

	if strategy == types.AnonymizerNER {
		switch t.Anonymizer.Recognizer {
		case RecognizerLLM:
			r, err := anonymizer.NewLLMRecognizer(client)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to create LLM entity recognizer")
			}
			opts = append(opts, anonymizer.WithRecognizer(r))
		default:
			opts = append(opts, anonymizer.WithRecognizer(anonymizer.NewGazetteer(
				anonymizer.WithLocations(t.Anonymizer.Locations...),
				anonymizer.WithInstitutionKeywords(t.Anonymizer.InstitutionKeywords...),
			)))
		}
	}

	a, err := anonymizer.New(strategy, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create anonymizer")
	}
	return a, nil
}

// LoadTuning reads a TOML tuning file over the defaults
func LoadTuning(path string) (*Tuning, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "tuning file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	tuning := DefaultTuning()
	if err := toml.Unmarshal(data, tuning); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config", goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := tuning.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return tuning, nil
}

// App holds the tuning file flag and the overrides given on the command line
type App struct {
	path       string
	anonymizer string
}

// Flags returns CLI flags for the tuning file
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML tuning file",
			Sources:     cli.EnvVars("MENTORAG_CONFIG"),
			Destination: &a.path,
		},
		&cli.StringFlag{
			Name:        "anonymizer",
			Usage:       "Anonymizer strategy (regex or ner), overrides the tuning file",
			Sources:     cli.EnvVars("MENTORAG_ANONYMIZER"),
			Destination: &a.anonymizer,
		},
	}
}

// LogAttrs returns log attributes for the tuning configuration
func (a *App) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("path", a.path),
		slog.String("anonymizer", a.anonymizer),
	}
}

// Configure loads the tuning file, or the defaults when none is given
func (a *App) Configure() (*Tuning, error) {
	tuning := DefaultTuning()
	if a.path != "" {
		loaded, err := LoadTuning(a.path)
		if err != nil {
			return nil, err
		}
		tuning = loaded
	}

	if a.anonymizer != "" {
		tuning.Anonymizer.Strategy = a.anonymizer
		if err := tuning.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid --anonymizer")
		}
	}

	return tuning, nil
}
