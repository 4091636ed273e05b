package memory

import (
	"github.com/secmon-lab/mentorag/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps every record in process memory. It is meant for local runs and tests.
type Memory struct {
	mentor       *mentorRepository
	content      *contentRepository
	chunk        *chunkRepository
	conversation *conversationRepository
	message      *messageRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		mentor:       newMentorRepository(),
		content:      newContentRepository(),
		chunk:        newChunkRepository(),
		conversation: newConversationRepository(),
		message:      newMessageRepository(),
	}
}

func (m *Memory) Mentor() interfaces.MentorRepository {
	return m.mentor
}

func (m *Memory) Content() interfaces.ContentRepository {
	return m.content
}

func (m *Memory) Chunk() interfaces.ChunkRepository {
	return m.chunk
}

func (m *Memory) Conversation() interfaces.ConversationRepository {
	return m.conversation
}

func (m *Memory) Message() interfaces.MessageRepository {
	return m.message
}

func (m *Memory) Close() error {
	return nil
}
