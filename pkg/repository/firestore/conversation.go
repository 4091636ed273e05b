package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type conversationDoc struct {
	ID        string    `firestore:"ID"`
	MentorID  string    `firestore:"MentorID"`
	UserID    string    `firestore:"UserID"`
	Title     string    `firestore:"Title"`
	CreatedAt time.Time `firestore:"CreatedAt"`
	UpdatedAt time.Time `firestore:"UpdatedAt"`
}

func docToConversation(doc *firestore.DocumentSnapshot) (*model.Conversation, error) {
	var d conversationDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return &model.Conversation{
		ID:        model.ConversationID(d.ID),
		MentorID:  model.MentorID(d.MentorID),
		UserID:    d.UserID,
		Title:     d.Title,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

type conversationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *conversationRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + ConversationsCollection)
}

func (r *conversationRepository) Create(ctx context.Context, conv *model.Conversation) (*model.Conversation, error) {
	if err := conv.Validate(); err != nil {
		return nil, goerr.Wrap(err, "failed to create conversation")
	}

	created := *conv
	if created.ID == "" {
		created.ID = model.NewConversationID()
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	doc := &conversationDoc{
		ID:        string(created.ID),
		MentorID:  string(created.MentorID),
		UserID:    created.UserID,
		Title:     created.Title,
		CreatedAt: created.CreatedAt,
		UpdatedAt: created.UpdatedAt,
	}
	if _, err := r.collection().Doc(doc.ID).Create(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create conversation", goerr.V(model.ConversationIDKey, created.ID))
	}
	return &created, nil
}

func (r *conversationRepository) Get(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V(model.ConversationIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V(model.ConversationIDKey, id))
	}

	conv, err := docToConversation(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal conversation", goerr.V(model.ConversationIDKey, id))
	}
	return conv, nil
}

func (r *conversationRepository) Touch(ctx context.Context, id model.ConversationID) error {
	_, err := r.collection().Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "UpdatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "conversation not found", goerr.V(model.ConversationIDKey, id))
		}
		return goerr.Wrap(err, "failed to touch conversation", goerr.V(model.ConversationIDKey, id))
	}
	return nil
}

func (r *conversationRepository) ListByMentor(ctx context.Context, mentorID model.MentorID) ([]*model.Conversation, error) {
	iter := r.collection().
		Where("MentorID", "==", string(mentorID)).
		OrderBy("UpdatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	convs := make([]*model.Conversation, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate conversations", goerr.V(model.MentorIDKey, mentorID))
		}

		c, err := docToConversation(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal conversation")
		}
		convs = append(convs, c)
	}

	return convs, nil
}

type citationDoc struct {
	SourceID string `firestore:"SourceID"`
	Title    string `firestore:"Title"`
	Excerpt  string `firestore:"Excerpt"`
}

type messageDoc struct {
	ID             string        `firestore:"ID"`
	ConversationID string        `firestore:"ConversationID"`
	Sender         string        `firestore:"Sender"`
	Text           string        `firestore:"Text"`
	Citations      []citationDoc `firestore:"Citations"`
	ProviderUsed   string        `firestore:"ProviderUsed"`
	CreatedAt      time.Time     `firestore:"CreatedAt"`
}

func toMessageDoc(m *model.Message) *messageDoc {
	citations := make([]citationDoc, len(m.Citations))
	for i, c := range m.Citations {
		citations[i] = citationDoc{
			SourceID: string(c.SourceID),
			Title:    c.Title,
			Excerpt:  c.Excerpt,
		}
	}
	return &messageDoc{
		ID:             string(m.ID),
		ConversationID: string(m.ConversationID),
		Sender:         string(m.Sender),
		Text:           m.Text,
		Citations:      citations,
		ProviderUsed:   string(m.ProviderUsed),
		CreatedAt:      m.CreatedAt,
	}
}

func docToMessage(doc *firestore.DocumentSnapshot) (*model.Message, error) {
	var d messageDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	citations := make([]model.Citation, len(d.Citations))
	for i, c := range d.Citations {
		citations[i] = model.Citation{
			SourceID: model.ContentID(c.SourceID),
			Title:    c.Title,
			Excerpt:  c.Excerpt,
		}
	}
	return &model.Message{
		ID:             model.MessageID(d.ID),
		ConversationID: model.ConversationID(d.ConversationID),
		Sender:         types.SenderType(d.Sender),
		Text:           d.Text,
		Citations:      citations,
		ProviderUsed:   types.ProviderRole(d.ProviderUsed),
		CreatedAt:      d.CreatedAt,
	}, nil
}

// messageRepository stores messages under their conversation document
type messageRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *messageRepository) collection(convID model.ConversationID) *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + ConversationsCollection).
		Doc(string(convID)).
		Collection(MessagesCollection)
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "failed to create message")
	}

	created := model.CopyMessage(msg)
	if created.ID == "" {
		created.ID = model.NewMessageID()
	}
	created.CreatedAt = time.Now().UTC()

	docRef := r.collection(created.ConversationID).Doc(string(created.ID))
	if _, err := docRef.Create(ctx, toMessageDoc(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create message",
			goerr.V(model.ConversationIDKey, created.ConversationID),
			goerr.V(model.MessageIDKey, created.ID))
	}
	return created, nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, convID model.ConversationID) ([]*model.Message, error) {
	iter := r.collection(convID).OrderBy("CreatedAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	messages := make([]*model.Message, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate messages", goerr.V(model.ConversationIDKey, convID))
		}

		m, err := docToMessage(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal message")
		}
		messages = append(messages, m)
	}

	return messages, nil
}
