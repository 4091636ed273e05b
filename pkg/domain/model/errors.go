package model

import "github.com/m-mizutani/goerr/v2"

// ErrInvalidRecord is returned when a record fails validation at the persistence boundary
var ErrInvalidRecord = goerr.New("invalid record")

// Context keys for error values
const (
	MentorIDKey       = "mentor_id"
	ContentIDKey      = "content_id"
	ChunkIDKey        = "chunk_id"
	ConversationIDKey = "conversation_id"
	MessageIDKey      = "message_id"
)
