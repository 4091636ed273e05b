package interfaces

import (
	"context"

	"github.com/secmon-lab/mentorag/pkg/domain/model"
)

// ConversationRepository defines the interface for Conversation persistence
type ConversationRepository interface {
	Create(ctx context.Context, conv *model.Conversation) (*model.Conversation, error)
	Get(ctx context.Context, id model.ConversationID) (*model.Conversation, error)
	// Touch sets UpdatedAt to now
	Touch(ctx context.Context, id model.ConversationID) error
	ListByMentor(ctx context.Context, mentorID model.MentorID) ([]*model.Conversation, error)
}

// MessageRepository defines the interface for conversation message persistence
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) (*model.Message, error)
	// ListByConversation returns messages oldest first
	ListByConversation(ctx context.Context, convID model.ConversationID) ([]*model.Message, error)
}
