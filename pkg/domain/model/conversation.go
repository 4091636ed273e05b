package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
)

// ConversationTitleLength is the number of characters of the first question used as title
const ConversationTitleLength = 50

// ConversationID is a UUID-based identifier for Conversation
type ConversationID string

// NewConversationID generates a new UUID v4 ConversationID
func NewConversationID() ConversationID {
	return ConversationID(uuid.New().String())
}

// Conversation is a chat thread between one user and one mentor
type Conversation struct {
	ID        ConversationID
	MentorID  MentorID
	UserID    string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks required fields before persistence
func (c *Conversation) Validate() error {
	if c.MentorID == "" {
		return goerr.Wrap(ErrInvalidRecord, "mentor ID is required", goerr.V(ConversationIDKey, c.ID))
	}
	return nil
}

// MessageID is a UUID-based identifier for Message
type MessageID string

// NewMessageID generates a new UUID v4 MessageID
func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

// Message is one stored turn of a conversation. User text is stored anonymized.
type Message struct {
	ID             MessageID
	ConversationID ConversationID
	Sender         types.SenderType
	Text           string
	Citations      []Citation
	ProviderUsed   types.ProviderRole
	CreatedAt      time.Time
}

// Validate checks required fields before persistence
func (m *Message) Validate() error {
	if m.ConversationID == "" {
		return goerr.Wrap(ErrInvalidRecord, "conversation ID is required", goerr.V(MessageIDKey, m.ID))
	}
	if !m.Sender.IsValid() {
		return goerr.Wrap(ErrInvalidRecord, "invalid sender",
			goerr.V(MessageIDKey, m.ID),
			goerr.V("sender", m.Sender))
	}
	if m.Text == "" {
		return goerr.Wrap(ErrInvalidRecord, "message text is required", goerr.V(MessageIDKey, m.ID))
	}
	if m.ProviderUsed != "" && !m.ProviderUsed.IsValid() {
		return goerr.Wrap(ErrInvalidRecord, "invalid provider role",
			goerr.V(MessageIDKey, m.ID),
			goerr.V("provider", m.ProviderUsed))
	}
	return nil
}

// CopyMessage returns a deep copy of the message
func CopyMessage(m *Message) *Message {
	copied := *m
	if m.Citations != nil {
		copied.Citations = make([]Citation, len(m.Citations))
		copy(copied.Citations, m.Citations)
	}
	return &copied
}
