package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
)

type conversationRepository struct {
	mu            sync.RWMutex
	conversations map[model.ConversationID]*model.Conversation
}

func newConversationRepository() *conversationRepository {
	return &conversationRepository{
		conversations: make(map[model.ConversationID]*model.Conversation),
	}
}

func copyConversation(c *model.Conversation) *model.Conversation {
	copied := *c
	return &copied
}

func (r *conversationRepository) Create(ctx context.Context, conv *model.Conversation) (*model.Conversation, error) {
	if err := conv.Validate(); err != nil {
		return nil, goerr.Wrap(err, "failed to create conversation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyConversation(conv)
	if created.ID == "" {
		created.ID = model.NewConversationID()
	}
	if _, exists := r.conversations[created.ID]; exists {
		return nil, goerr.New("conversation already exists", goerr.V(model.ConversationIDKey, created.ID))
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.conversations[created.ID] = created
	return copyConversation(created), nil
}

func (r *conversationRepository) Get(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, exists := r.conversations[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V(model.ConversationIDKey, id))
	}
	return copyConversation(conv), nil
}

func (r *conversationRepository) Touch(ctx context.Context, id model.ConversationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, exists := r.conversations[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "conversation not found", goerr.V(model.ConversationIDKey, id))
	}
	conv.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *conversationRepository) ListByMentor(ctx context.Context, mentorID model.MentorID) ([]*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Conversation, 0)
	for _, c := range r.conversations {
		if c.MentorID == mentorID {
			result = append(result, copyConversation(c))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

type messageRepository struct {
	mu       sync.RWMutex
	messages map[model.ConversationID][]*model.Message
}

func newMessageRepository() *messageRepository {
	return &messageRepository{
		messages: make(map[model.ConversationID][]*model.Message),
	}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "failed to create message")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := model.CopyMessage(msg)
	if created.ID == "" {
		created.ID = model.NewMessageID()
	}
	created.CreatedAt = time.Now().UTC()

	r.messages[created.ConversationID] = append(r.messages[created.ConversationID], created)
	return model.CopyMessage(created), nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, convID model.ConversationID) ([]*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.messages[convID]
	result := make([]*model.Message, len(stored))
	for i, m := range stored {
		result[i] = model.CopyMessage(m)
	}
	return result, nil
}
