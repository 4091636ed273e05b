package interfaces

import (
	"context"

	"github.com/secmon-lab/mentorag/pkg/domain/model"
)

// MentorRepository defines the interface for Mentor data persistence
type MentorRepository interface {
	// Create creates a new mentor, assigning an ID when empty
	Create(ctx context.Context, mentor *model.Mentor) (*model.Mentor, error)

	// Get retrieves a mentor by ID
	Get(ctx context.Context, id model.MentorID) (*model.Mentor, error)

	// Update reads the stored mentor, applies fn to it and writes the result as
	// one atomic step. An error from fn aborts the write and is returned.
	Update(ctx context.Context, id model.MentorID, fn func(mentor *model.Mentor) error) (*model.Mentor, error)

	// List retrieves all mentors
	List(ctx context.Context) ([]*model.Mentor, error)
}
