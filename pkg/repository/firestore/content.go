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

type contentDoc struct {
	ID         string    `firestore:"ID"`
	MentorID   string    `firestore:"MentorID"`
	Title      string    `firestore:"Title"`
	Status     string    `firestore:"Status"`
	ChunkCount int       `firestore:"ChunkCount"`
	CreatedAt  time.Time `firestore:"CreatedAt"`
	UpdatedAt  time.Time `firestore:"UpdatedAt"`
}

func toContentDoc(c *model.Content) *contentDoc {
	return &contentDoc{
		ID:         string(c.ID),
		MentorID:   string(c.MentorID),
		Title:      c.Title,
		Status:     string(c.Status),
		ChunkCount: c.ChunkCount,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func docToContent(doc *firestore.DocumentSnapshot) (*model.Content, error) {
	var d contentDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return &model.Content{
		ID:         model.ContentID(d.ID),
		MentorID:   model.MentorID(d.MentorID),
		Title:      d.Title,
		Status:     types.ContentStatus(d.Status),
		ChunkCount: d.ChunkCount,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}, nil
}

type contentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *contentRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + ContentsCollection)
}

func (r *contentRepository) Create(ctx context.Context, content *model.Content) (*model.Content, error) {
	if err := content.Validate(); err != nil {
		return nil, goerr.Wrap(err, "failed to create content")
	}

	created := *content
	if created.ID == "" {
		created.ID = model.NewContentID()
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.collection().Doc(string(created.ID)).Create(ctx, toContentDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create content", goerr.V(model.ContentIDKey, created.ID))
	}
	return &created, nil
}

func (r *contentRepository) Get(ctx context.Context, id model.ContentID) (*model.Content, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "content not found", goerr.V(model.ContentIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get content", goerr.V(model.ContentIDKey, id))
	}

	c, err := docToContent(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal content", goerr.V(model.ContentIDKey, id))
	}
	return c, nil
}

func (r *contentRepository) Update(ctx context.Context, content *model.Content) (*model.Content, error) {
	if err := content.Validate(); err != nil {
		return nil, goerr.Wrap(err, "failed to update content")
	}

	updated := *content
	updated.UpdatedAt = time.Now().UTC()

	_, err := r.collection().Doc(string(content.ID)).Update(ctx, []firestore.Update{
		{Path: "Title", Value: updated.Title},
		{Path: "Status", Value: string(updated.Status)},
		{Path: "ChunkCount", Value: updated.ChunkCount},
		{Path: "UpdatedAt", Value: updated.UpdatedAt},
	})
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "content not found", goerr.V(model.ContentIDKey, content.ID))
		}
		return nil, goerr.Wrap(err, "failed to update content", goerr.V(model.ContentIDKey, content.ID))
	}

	return r.Get(ctx, content.ID)
}

func (r *contentRepository) ListByMentor(ctx context.Context, mentorID model.MentorID) ([]*model.Content, error) {
	iter := r.collection().
		Where("MentorID", "==", string(mentorID)).
		OrderBy("CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	contents := make([]*model.Content, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate contents", goerr.V(model.MentorIDKey, mentorID))
		}

		c, err := docToContent(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal content")
		}
		contents = append(contents, c)
	}

	return contents, nil
}

func (r *contentRepository) Delete(ctx context.Context, id model.ContentID) error {
	docRef := r.collection().Doc(string(id))

	if _, err := docRef.Get(ctx); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "content not found", goerr.V(model.ContentIDKey, id))
		}
		return goerr.Wrap(err, "failed to get content", goerr.V(model.ContentIDKey, id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete content", goerr.V(model.ContentIDKey, id))
	}
	return nil
}
