package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Mentor() MentorRepository
	Content() ContentRepository
	Chunk() ChunkRepository
	Conversation() ConversationRepository
	Message() MessageRepository

	Close() error
}
