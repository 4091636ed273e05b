package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// ChunkID is a UUID-based identifier for Chunk
type ChunkID string

// NewChunkID generates a new UUID v4 ChunkID
func NewChunkID() ChunkID {
	return ChunkID(uuid.New().String())
}

// CitationExcerptLength is the number of characters of chunk text kept in a citation
const CitationExcerptLength = 200

// Chunk is a token-bounded slice of an ingested document with its embedding.
// Chunks are immutable once stored and are removed with their parent content.
type Chunk struct {
	ID         ChunkID
	ContentID  ContentID
	MentorID   MentorID
	Title      string
	ChunkIndex int
	Text       string
	Embedding  []float32
	CreatedAt  time.Time
}

// Validate checks required fields before persistence
func (c *Chunk) Validate() error {
	if c.ContentID == "" {
		return goerr.Wrap(ErrInvalidRecord, "content ID is required", goerr.V(ChunkIDKey, c.ID))
	}
	if c.MentorID == "" {
		return goerr.Wrap(ErrInvalidRecord, "mentor ID is required", goerr.V(ChunkIDKey, c.ID))
	}
	if c.ChunkIndex < 0 {
		return goerr.Wrap(ErrInvalidRecord, "chunk index must not be negative",
			goerr.V(ChunkIDKey, c.ID),
			goerr.V("index", c.ChunkIndex))
	}
	if c.Text == "" {
		return goerr.Wrap(ErrInvalidRecord, "chunk text is required", goerr.V(ChunkIDKey, c.ID))
	}
	if len(c.Embedding) == 0 {
		return goerr.Wrap(ErrInvalidRecord, "chunk embedding is required", goerr.V(ChunkIDKey, c.ID))
	}
	return nil
}

// Citation projects the chunk into a citation shown next to an answer
func (c *Chunk) Citation() Citation {
	return Citation{
		SourceID: c.ContentID,
		Title:    c.Title,
		Excerpt:  Excerpt(c.Text, CitationExcerptLength),
	}
}

// ValidateChunkSet checks that a document's chunks are well formed, indexed
// contiguously from zero and share one embedding dimension.
func ValidateChunkSet(chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	dim := len(chunks[0].Embedding)
	for i, c := range chunks {
		if err := c.Validate(); err != nil {
			return err
		}
		if c.ChunkIndex != i {
			return goerr.Wrap(ErrInvalidRecord, "chunk index is not contiguous",
				goerr.V(ContentIDKey, c.ContentID),
				goerr.V("expected", i),
				goerr.V("actual", c.ChunkIndex))
		}
		if c.ContentID != chunks[0].ContentID {
			return goerr.Wrap(ErrInvalidRecord, "chunks belong to different contents",
				goerr.V(ContentIDKey, c.ContentID))
		}
		if len(c.Embedding) != dim {
			return goerr.Wrap(ErrInvalidRecord, "embedding dimension mismatch",
				goerr.V(ContentIDKey, c.ContentID),
				goerr.V("expected", dim),
				goerr.V("actual", len(c.Embedding)))
		}
	}
	return nil
}

// CopyChunk returns a deep copy of the chunk
func CopyChunk(c *Chunk) *Chunk {
	copied := *c
	if c.Embedding != nil {
		copied.Embedding = make([]float32, len(c.Embedding))
		copy(copied.Embedding, c.Embedding)
	}
	return &copied
}
