package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
)

// ContentID is a UUID-based identifier for an ingested document
type ContentID string

// NewContentID generates a new UUID v4 ContentID
func NewContentID() ContentID {
	return ContentID(uuid.New().String())
}

// Content is an ingested document. Its text lives only in its chunks.
type Content struct {
	ID         ContentID
	MentorID   MentorID
	Title      string
	Status     types.ContentStatus
	ChunkCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks required fields before persistence
func (c *Content) Validate() error {
	if c.MentorID == "" {
		return goerr.Wrap(ErrInvalidRecord, "mentor ID is required", goerr.V(ContentIDKey, c.ID))
	}
	if c.Title == "" {
		return goerr.Wrap(ErrInvalidRecord, "content title is required", goerr.V(ContentIDKey, c.ID))
	}
	if !c.Status.IsValid() {
		return goerr.Wrap(ErrInvalidRecord, "invalid content status",
			goerr.V(ContentIDKey, c.ID),
			goerr.V("status", c.Status))
	}
	return nil
}
