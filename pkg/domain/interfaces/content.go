package interfaces

import (
	"context"

	"github.com/secmon-lab/mentorag/pkg/domain/model"
)

// ContentRepository defines the interface for ingested document records
type ContentRepository interface {
	Create(ctx context.Context, content *model.Content) (*model.Content, error)
	Get(ctx context.Context, id model.ContentID) (*model.Content, error)
	Update(ctx context.Context, content *model.Content) (*model.Content, error)
	ListByMentor(ctx context.Context, mentorID model.MentorID) ([]*model.Content, error)
	Delete(ctx context.Context, id model.ContentID) error
}
