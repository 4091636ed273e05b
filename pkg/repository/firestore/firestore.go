package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/interfaces"
)

// Collection names before any prefix is applied
const (
	MentorsCollection       = "mentors"
	ContentsCollection      = "contents"
	ChunksCollection        = "chunks"
	ConversationsCollection = "conversations"
	MessagesCollection      = "messages"
)

type Firestore struct {
	client       *firestore.Client
	mentor       *mentorRepository
	content      *contentRepository
	chunk        *chunkRepository
	conversation *conversationRepository
	message      *messageRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every top-level collection name
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.mentor.collectionPrefix = prefix
		f.content.collectionPrefix = prefix
		f.chunk.collectionPrefix = prefix
		f.conversation.collectionPrefix = prefix
		f.message.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:       client,
		mentor:       &mentorRepository{client: client},
		content:      &contentRepository{client: client},
		chunk:        &chunkRepository{client: client},
		conversation: &conversationRepository{client: client},
		message:      &messageRepository{client: client},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Mentor() interfaces.MentorRepository {
	return f.mentor
}

func (f *Firestore) Content() interfaces.ContentRepository {
	return f.content
}

func (f *Firestore) Chunk() interfaces.ChunkRepository {
	return f.chunk
}

func (f *Firestore) Conversation() interfaces.ConversationRepository {
	return f.conversation
}

func (f *Firestore) Message() interfaces.MessageRepository {
	return f.message
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
