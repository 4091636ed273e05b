package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
)

type mentorRepository struct {
	mu      sync.RWMutex
	mentors map[model.MentorID]*model.Mentor
}

func newMentorRepository() *mentorRepository {
	return &mentorRepository{
		mentors: make(map[model.MentorID]*model.Mentor),
	}
}

func copyMentor(m *model.Mentor) *model.Mentor {
	copied := *m
	copied.ActiveProfile = m.ActiveProfile.Copy()
	copied.PendingProfile = m.PendingProfile.Copy()
	return &copied
}

func (r *mentorRepository) Create(ctx context.Context, mentor *model.Mentor) (*model.Mentor, error) {
	if err := mentor.Validate(); err != nil {
		return nil, goerr.Wrap(err, "failed to create mentor")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyMentor(mentor)
	if created.ID == "" {
		created.ID = model.NewMentorID()
	}
	if _, exists := r.mentors[created.ID]; exists {
		return nil, goerr.New("mentor already exists", goerr.V(model.MentorIDKey, created.ID))
	}
	if created.ProfileStatus == "" {
		created.ProfileStatus = types.ProfileStatusInactive
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.mentors[created.ID] = created
	return copyMentor(created), nil
}

func (r *mentorRepository) Get(ctx context.Context, id model.MentorID) (*model.Mentor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mentor, exists := r.mentors[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "mentor not found", goerr.V(model.MentorIDKey, id))
	}
	return copyMentor(mentor), nil
}

func (r *mentorRepository) Update(ctx context.Context, id model.MentorID, fn func(mentor *model.Mentor) error) (*model.Mentor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.mentors[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "mentor not found", goerr.V(model.MentorIDKey, id))
	}

	updated := copyMentor(existing)
	if err := fn(updated); err != nil {
		return nil, err
	}
	if err := updated.Validate(); err != nil {
		return nil, goerr.Wrap(err, "failed to update mentor")
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.mentors[id] = updated
	return copyMentor(updated), nil
}

func (r *mentorRepository) List(ctx context.Context) ([]*model.Mentor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Mentor, 0, len(r.mentors))
	for _, m := range r.mentors {
		result = append(result, copyMentor(m))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}
