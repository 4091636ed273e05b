package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
)

type contentRepository struct {
	mu       sync.RWMutex
	contents map[model.ContentID]*model.Content
}

func newContentRepository() *contentRepository {
	return &contentRepository{
		contents: make(map[model.ContentID]*model.Content),
	}
}

func copyContent(c *model.Content) *model.Content {
	copied := *c
	return &copied
}

func (r *contentRepository) Create(ctx context.Context, content *model.Content) (*model.Content, error) {
	if err := content.Validate(); err != nil {
		return nil, goerr.Wrap(err, "failed to create content")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyContent(content)
	if created.ID == "" {
		created.ID = model.NewContentID()
	}
	if _, exists := r.contents[created.ID]; exists {
		return nil, goerr.New("content already exists", goerr.V(model.ContentIDKey, created.ID))
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.contents[created.ID] = created
	return copyContent(created), nil
}

func (r *contentRepository) Get(ctx context.Context, id model.ContentID) (*model.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, exists := r.contents[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "content not found", goerr.V(model.ContentIDKey, id))
	}
	return copyContent(content), nil
}

func (r *contentRepository) Update(ctx context.Context, content *model.Content) (*model.Content, error) {
	if err := content.Validate(); err != nil {
		return nil, goerr.Wrap(err, "failed to update content")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.contents[content.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "content not found", goerr.V(model.ContentIDKey, content.ID))
	}

	updated := copyContent(content)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.contents[updated.ID] = updated
	return copyContent(updated), nil
}

func (r *contentRepository) ListByMentor(ctx context.Context, mentorID model.MentorID) ([]*model.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Content, 0)
	for _, c := range r.contents {
		if c.MentorID == mentorID {
			result = append(result, copyContent(c))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *contentRepository) Delete(ctx context.Context, id model.ContentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[id]; !exists {
		return goerr.Wrap(ErrNotFound, "content not found", goerr.V(model.ContentIDKey, id))
	}
	delete(r.contents, id)
	return nil
}
