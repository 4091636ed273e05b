package interfaces

import (
	"context"

	"github.com/secmon-lab/mentorag/pkg/domain/model"
)

// ChunkRepository defines the interface for Chunk persistence.
// Ranking is done by the caller over the returned vectors.
type ChunkRepository interface {
	// CreateBatch stores all chunks of one document or none of them
	CreateBatch(ctx context.Context, chunks []*model.Chunk) error

	// ListByMentor returns up to limit chunks of a mentor's corpus
	ListByMentor(ctx context.Context, mentorID model.MentorID, limit int) ([]*model.Chunk, error)

	// ListByContent returns the chunks of one document ordered by ChunkIndex
	ListByContent(ctx context.Context, contentID model.ContentID) ([]*model.Chunk, error)

	// List returns up to limit chunks across all mentors
	List(ctx context.Context, limit int) ([]*model.Chunk, error)

	// DeleteByContent removes every chunk of a document and returns how many were removed
	DeleteByContent(ctx context.Context, contentID model.ContentID) (int, error)
}
