package usecase

import (
	"github.com/secmon-lab/mentorag/pkg/domain/interfaces"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/service/chunker"
	"github.com/secmon-lab/mentorag/pkg/service/generation"
	"github.com/secmon-lab/mentorag/pkg/service/profile"
	"github.com/secmon-lab/mentorag/pkg/service/ranker"
	"github.com/secmon-lab/mentorag/pkg/utils/async"
)

// RAGConfig holds the retrieval parameters of the chat and search paths
type RAGConfig struct {
	ChatTopK          int
	ChatMinSimilarity float64
	ChatChunkLimit    int

	SearchTopK          int
	SearchMinSimilarity float64
	SearchChunkLimit    int
	SearchExcerpts      int // per mentor
	SearchExcerptLength int
	MinQueryLength      int

	EmbedConcurrency  int
	PreferredProvider types.ProviderName
}

// DefaultRAGConfig returns the parameters used when nothing is configured
func DefaultRAGConfig() RAGConfig {
	return RAGConfig{
		ChatTopK:            ranker.ChatTopK,
		ChatMinSimilarity:   ranker.ChatMinSimilarity,
		ChatChunkLimit:      500,
		SearchTopK:          ranker.UniversalTopK,
		SearchMinSimilarity: ranker.UniversalMinSimilarity,
		SearchChunkLimit:    5000,
		SearchExcerpts:      3,
		SearchExcerptLength: 300,
		MinQueryLength:      3,
		EmbedConcurrency:    4,
		PreferredProvider:   types.ProviderOpenAI,
	}
}

type UseCases struct {
	repo       interfaces.Repository
	embedder   interfaces.Embedder
	anonymizer interfaces.Anonymizer
	generator  generation.Service
	profiler   profile.Service
	chunker    *chunker.Chunker
	rag        RAGConfig
	tasks      *async.Group

	Mentor  *MentorUseCase
	Chat    *ChatUseCase
	Ingest  *IngestUseCase
	Profile *ProfileUseCase
	Search  *SearchUseCase
}

type Option func(*UseCases)

func WithEmbedder(e interfaces.Embedder) Option {
	return func(uc *UseCases) {
		uc.embedder = e
	}
}

func WithAnonymizer(a interfaces.Anonymizer) Option {
	return func(uc *UseCases) {
		uc.anonymizer = a
	}
}

func WithGenerator(g generation.Service) Option {
	return func(uc *UseCases) {
		uc.generator = g
	}
}

func WithProfiler(p profile.Service) Option {
	return func(uc *UseCases) {
		uc.profiler = p
	}
}

func WithChunker(c *chunker.Chunker) Option {
	return func(uc *UseCases) {
		uc.chunker = c
	}
}

func WithRAGConfig(cfg RAGConfig) Option {
	return func(uc *UseCases) {
		uc.rag = cfg
	}
}

// WithTaskGroup sets the group background profile synthesis runs in, so the
// caller can wait for it before exiting.
func WithTaskGroup(g *async.Group) Option {
	return func(uc *UseCases) {
		uc.tasks = g
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:  repo,
		rag:   DefaultRAGConfig(),
		tasks: &async.Group{},
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Mentor = NewMentorUseCase(repo)
	uc.Chat = NewChatUseCase(repo, uc.embedder, uc.anonymizer, uc.generator, uc.rag)
	uc.Ingest = NewIngestUseCase(repo, uc.chunker, uc.embedder, uc.profiler, uc.tasks, uc.rag)
	uc.Profile = NewProfileUseCase(repo)
	uc.Search = NewSearchUseCase(repo, uc.embedder, uc.rag)

	return uc
}

// Wait blocks until background tasks started by the use cases have finished
func (uc *UseCases) Wait() {
	uc.tasks.Wait()
}
