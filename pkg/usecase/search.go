package usecase

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/interfaces"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/service/ranker"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
)

// SearchExcerpt is a matching passage of a mentor's document
type SearchExcerpt struct {
	ContentID    model.ContentID
	ContentTitle string
	Text         string
	Score        float64 // rounded to three decimals
}

// MentorMatch groups the excerpts of one mentor
type MentorMatch struct {
	MentorID  model.MentorID
	Name      string
	Specialty string
	BestScore float64
	Excerpts  []SearchExcerpt
}

// SearchResult lists mentors by their best matching passage
type SearchResult struct {
	Query   string
	Mentors []*MentorMatch
}

type SearchUseCase struct {
	repo     interfaces.Repository
	embedder interfaces.Embedder
	rag      RAGConfig
}

func NewSearchUseCase(repo interfaces.Repository, embedder interfaces.Embedder, rag RAGConfig) *SearchUseCase {
	return &SearchUseCase{
		repo:     repo,
		embedder: embedder,
		rag:      rag,
	}
}

// Universal finds which mentors know about query by ranking every stored chunk
func (uc *SearchUseCase) Universal(ctx context.Context, query string) (*SearchResult, error) {
	if uc.embedder == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "search requires an embedder")
	}

	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < uc.rag.MinQueryLength {
		return nil, goerr.Wrap(ErrQueryTooShort, "query is too short",
			goerr.V("length", utf8.RuneCountInString(query)),
			goerr.V("min", uc.rag.MinQueryLength))
	}

	result := &SearchResult{Query: query, Mentors: []*MentorMatch{}}

	queryVec, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	chunks, err := uc.repo.Chunk().List(ctx, uc.rag.SearchChunkLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list chunks")
	}
	if len(chunks) == 0 {
		return result, nil
	}

	vectors := make([][]float32, len(chunks))
	for i, c := range chunks {
		vectors[i] = c.Embedding
	}
	matches := ranker.Rank(queryVec, vectors, uc.rag.SearchTopK, uc.rag.SearchMinSimilarity)

	byMentor := make(map[model.MentorID]*MentorMatch)
	for _, m := range matches {
		c := chunks[m.Index]
		score := math.Round(m.Score*1000) / 1000

		mm, ok := byMentor[c.MentorID]
		if !ok {
			mm = &MentorMatch{MentorID: c.MentorID}
			byMentor[c.MentorID] = mm
			result.Mentors = append(result.Mentors, mm)
		}
		mm.BestScore = max(mm.BestScore, score)
		mm.Excerpts = append(mm.Excerpts, SearchExcerpt{
			ContentID:    c.ContentID,
			ContentTitle: c.Title,
			Text:         truncateRunes(c.Text, uc.rag.SearchExcerptLength),
			Score:        score,
		})
	}

	for _, mm := range result.Mentors {
		sort.SliceStable(mm.Excerpts, func(i, j int) bool {
			return mm.Excerpts[i].Score > mm.Excerpts[j].Score
		})
		if len(mm.Excerpts) > uc.rag.SearchExcerpts {
			mm.Excerpts = mm.Excerpts[:uc.rag.SearchExcerpts]
		}

		mentor, err := uc.repo.Mentor().Get(ctx, mm.MentorID)
		if err != nil {
			logging.From(ctx).Warn("search hit belongs to an unknown mentor", MentorIDKey, mm.MentorID, "error", err)
			continue
		}
		mm.Name = mentor.Name
		mm.Specialty = mentor.Specialty
	}

	sort.SliceStable(result.Mentors, func(i, j int) bool {
		return result.Mentors[i].BestScore > result.Mentors[j].BestScore
	})

	logging.From(ctx).Info("universal search", "chunks", len(chunks), "matches", len(matches), "mentors", len(result.Mentors))
	return result, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
