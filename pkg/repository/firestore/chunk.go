package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"google.golang.org/api/iterator"
)

// chunkDoc stores the embedding as firestore.Vector32
type chunkDoc struct {
	ID         string             `firestore:"ID"`
	ContentID  string             `firestore:"ContentID"`
	MentorID   string             `firestore:"MentorID"`
	Title      string             `firestore:"Title"`
	ChunkIndex int                `firestore:"ChunkIndex"`
	Text       string             `firestore:"Text"`
	Embedding  firestore.Vector32 `firestore:"Embedding"`
	CreatedAt  time.Time          `firestore:"CreatedAt"`
}

func toChunkDoc(c *model.Chunk) *chunkDoc {
	return &chunkDoc{
		ID:         string(c.ID),
		ContentID:  string(c.ContentID),
		MentorID:   string(c.MentorID),
		Title:      c.Title,
		ChunkIndex: c.ChunkIndex,
		Text:       c.Text,
		Embedding:  firestore.Vector32(c.Embedding),
		CreatedAt:  c.CreatedAt,
	}
}

func docToChunk(doc *firestore.DocumentSnapshot) (*model.Chunk, error) {
	var d chunkDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return &model.Chunk{
		ID:         model.ChunkID(d.ID),
		ContentID:  model.ContentID(d.ContentID),
		MentorID:   model.MentorID(d.MentorID),
		Title:      d.Title,
		ChunkIndex: d.ChunkIndex,
		Text:       d.Text,
		Embedding:  []float32(d.Embedding),
		CreatedAt:  d.CreatedAt,
	}, nil
}

type chunkRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *chunkRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + ChunksCollection)
}

// CreateBatch writes all chunks of one content in a single transaction
func (r *chunkRepository) CreateBatch(ctx context.Context, chunks []*model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := model.ValidateChunkSet(chunks); err != nil {
		return goerr.Wrap(err, "failed to create chunks")
	}

	contentID := chunks[0].ContentID
	now := time.Now().UTC()
	docs := make([]*chunkDoc, len(chunks))
	for i, c := range chunks {
		d := toChunkDoc(c)
		if d.ID == "" {
			d.ID = string(model.NewChunkID())
		}
		d.CreatedAt = now
		docs[i] = d
	}

	existing := r.collection().Where("ContentID", "==", string(contentID)).Limit(1)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		found, err := tx.Documents(existing).GetAll()
		if err != nil {
			return err
		}
		if len(found) > 0 {
			return goerr.New("chunks already exist for content", goerr.V(model.ContentIDKey, contentID))
		}

		for _, d := range docs {
			if err := tx.Create(r.collection().Doc(d.ID), d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create chunks",
			goerr.V(model.ContentIDKey, contentID),
			goerr.V("count", len(chunks)))
	}

	return nil
}

func (r *chunkRepository) list(ctx context.Context, q firestore.Query) ([]*model.Chunk, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	chunks := make([]*model.Chunk, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate chunks")
		}

		c, err := docToChunk(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal chunk")
		}
		chunks = append(chunks, c)
	}

	return chunks, nil
}

func (r *chunkRepository) ListByMentor(ctx context.Context, mentorID model.MentorID, limit int) ([]*model.Chunk, error) {
	q := r.collection().Where("MentorID", "==", string(mentorID))
	if limit > 0 {
		q = q.Limit(limit)
	}

	chunks, err := r.list(ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list chunks", goerr.V(model.MentorIDKey, mentorID))
	}
	return chunks, nil
}

func (r *chunkRepository) ListByContent(ctx context.Context, contentID model.ContentID) ([]*model.Chunk, error) {
	q := r.collection().
		Where("ContentID", "==", string(contentID)).
		OrderBy("ChunkIndex", firestore.Asc)

	chunks, err := r.list(ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list chunks", goerr.V(model.ContentIDKey, contentID))
	}
	return chunks, nil
}

func (r *chunkRepository) List(ctx context.Context, limit int) ([]*model.Chunk, error) {
	q := r.collection().Query
	if limit > 0 {
		q = q.Limit(limit)
	}
	return r.list(ctx, q)
}

// DeleteByContent removes chunks in pages with a BulkWriter
func (r *chunkRepository) DeleteByContent(ctx context.Context, contentID model.ContentID) (int, error) {
	const batchSize = 500
	totalDeleted := 0

	for {
		iter := r.collection().
			Where("ContentID", "==", string(contentID)).
			Limit(batchSize).
			Documents(ctx)
		bulkWriter := r.client.BulkWriter(ctx)
		count := 0

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				bulkWriter.End()
				return totalDeleted, goerr.Wrap(err, "failed to iterate chunks for deletion", goerr.V(model.ContentIDKey, contentID))
			}

			if _, err := bulkWriter.Delete(doc.Ref); err != nil {
				iter.Stop()
				bulkWriter.End()
				return totalDeleted, goerr.Wrap(err, "failed to delete chunk", goerr.V(model.ContentIDKey, contentID))
			}
			count++
		}
		iter.Stop()
		bulkWriter.End()

		totalDeleted += count
		if count < batchSize {
			break
		}
	}

	return totalDeleted, nil
}
