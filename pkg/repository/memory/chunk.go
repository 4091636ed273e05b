package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
)

// chunkRepository keeps chunks grouped by content in ingestion order
type chunkRepository struct {
	mu     sync.RWMutex
	chunks map[model.ContentID][]*model.Chunk
	order  []model.ContentID
}

func newChunkRepository() *chunkRepository {
	return &chunkRepository{
		chunks: make(map[model.ContentID][]*model.Chunk),
	}
}

func (r *chunkRepository) CreateBatch(ctx context.Context, chunks []*model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := model.ValidateChunkSet(chunks); err != nil {
		return goerr.Wrap(err, "failed to create chunks")
	}

	contentID := chunks[0].ContentID

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.chunks[contentID]; exists {
		return goerr.New("chunks already exist for content", goerr.V(model.ContentIDKey, contentID))
	}

	now := time.Now().UTC()
	stored := make([]*model.Chunk, len(chunks))
	for i, c := range chunks {
		created := model.CopyChunk(c)
		if created.ID == "" {
			created.ID = model.NewChunkID()
		}
		created.CreatedAt = now
		stored[i] = created
	}

	r.chunks[contentID] = stored
	r.order = append(r.order, contentID)
	return nil
}

// collect walks contents in ingestion order and returns up to limit matching
// chunks. A non-positive limit means no limit.
func (r *chunkRepository) collect(limit int, match func(*model.Chunk) bool) []*model.Chunk {
	result := make([]*model.Chunk, 0)
	for _, contentID := range r.order {
		for _, c := range r.chunks[contentID] {
			if !match(c) {
				continue
			}
			if limit > 0 && len(result) >= limit {
				return result
			}
			result = append(result, model.CopyChunk(c))
		}
	}
	return result
}

func (r *chunkRepository) ListByMentor(ctx context.Context, mentorID model.MentorID, limit int) ([]*model.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(limit, func(c *model.Chunk) bool {
		return c.MentorID == mentorID
	}), nil
}

func (r *chunkRepository) ListByContent(ctx context.Context, contentID model.ContentID) ([]*model.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.chunks[contentID]
	result := make([]*model.Chunk, len(stored))
	for i, c := range stored {
		result[i] = model.CopyChunk(c)
	}
	return result, nil
}

func (r *chunkRepository) List(ctx context.Context, limit int) ([]*model.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(limit, func(*model.Chunk) bool { return true }), nil
}

func (r *chunkRepository) DeleteByContent(ctx context.Context, contentID model.ContentID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.chunks[contentID]
	if !exists {
		return 0, nil
	}

	delete(r.chunks, contentID)
	r.order = slices.DeleteFunc(r.order, func(id model.ContentID) bool {
		return id == contentID
	})
	return len(stored), nil
}
