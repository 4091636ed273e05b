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

type profileDoc struct {
	ProfileText    string    `firestore:"ProfileText"`
	StyleTraits    string    `firestore:"StyleTraits"`
	AnalysisSource string    `firestore:"AnalysisSource"`
	CreatedAt      time.Time `firestore:"CreatedAt"`
}

type mentorDoc struct {
	ID               string      `firestore:"ID"`
	Name             string      `firestore:"Name"`
	Specialty        string      `firestore:"Specialty"`
	ActiveProfile    *profileDoc `firestore:"ActiveProfile"`
	PendingProfile   *profileDoc `firestore:"PendingProfile"`
	ProfileStatus    string      `firestore:"ProfileStatus"`
	ProfileUpdatedAt time.Time   `firestore:"ProfileUpdatedAt"`
	CreatedAt        time.Time   `firestore:"CreatedAt"`
	UpdatedAt        time.Time   `firestore:"UpdatedAt"`
}

func toProfileDoc(p *model.StyleProfile) *profileDoc {
	if p == nil {
		return nil
	}
	return &profileDoc{
		ProfileText:    p.ProfileText,
		StyleTraits:    p.StyleTraits,
		AnalysisSource: string(p.AnalysisSource),
		CreatedAt:      p.CreatedAt,
	}
}

func fromProfileDoc(d *profileDoc) *model.StyleProfile {
	if d == nil {
		return nil
	}
	return &model.StyleProfile{
		ProfileText:    d.ProfileText,
		StyleTraits:    d.StyleTraits,
		AnalysisSource: types.AnalysisSource(d.AnalysisSource),
		CreatedAt:      d.CreatedAt,
	}
}

func toMentorDoc(m *model.Mentor) *mentorDoc {
	return &mentorDoc{
		ID:               string(m.ID),
		Name:             m.Name,
		Specialty:        m.Specialty,
		ActiveProfile:    toProfileDoc(m.ActiveProfile),
		PendingProfile:   toProfileDoc(m.PendingProfile),
		ProfileStatus:    string(m.ProfileStatus),
		ProfileUpdatedAt: m.ProfileUpdatedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func docToMentor(doc *firestore.DocumentSnapshot) (*model.Mentor, error) {
	var d mentorDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return &model.Mentor{
		ID:               model.MentorID(d.ID),
		Name:             d.Name,
		Specialty:        d.Specialty,
		ActiveProfile:    fromProfileDoc(d.ActiveProfile),
		PendingProfile:   fromProfileDoc(d.PendingProfile),
		ProfileStatus:    types.ProfileStatus(d.ProfileStatus),
		ProfileUpdatedAt: d.ProfileUpdatedAt,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}, nil
}

type mentorRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *mentorRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + MentorsCollection)
}

func (r *mentorRepository) Create(ctx context.Context, mentor *model.Mentor) (*model.Mentor, error) {
	if err := mentor.Validate(); err != nil {
		return nil, goerr.Wrap(err, "failed to create mentor")
	}

	created := *mentor
	if created.ID == "" {
		created.ID = model.NewMentorID()
	}
	if created.ProfileStatus == "" {
		created.ProfileStatus = types.ProfileStatusInactive
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.collection().Doc(string(created.ID)).Create(ctx, toMentorDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create mentor", goerr.V(model.MentorIDKey, created.ID))
	}
	return &created, nil
}

func (r *mentorRepository) Get(ctx context.Context, id model.MentorID) (*model.Mentor, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "mentor not found", goerr.V(model.MentorIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get mentor", goerr.V(model.MentorIDKey, id))
	}

	mentor, err := docToMentor(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal mentor", goerr.V(model.MentorIDKey, id))
	}
	return mentor, nil
}

func (r *mentorRepository) Update(ctx context.Context, id model.MentorID, fn func(mentor *model.Mentor) error) (*model.Mentor, error) {
	docRef := r.collection().Doc(string(id))

	var updated *model.Mentor
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "mentor not found", goerr.V(model.MentorIDKey, id))
			}
			return err
		}
		existing, err := docToMentor(doc)
		if err != nil {
			return err
		}

		// fn runs again on a fresh read when the transaction retries
		m := *existing
		if err := fn(&m); err != nil {
			return err
		}
		if err := m.Validate(); err != nil {
			return err
		}
		m.ID = existing.ID
		m.CreatedAt = existing.CreatedAt
		m.UpdatedAt = time.Now().UTC()

		updated = &m
		return tx.Set(docRef, toMentorDoc(&m))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update mentor", goerr.V(model.MentorIDKey, id))
	}

	return updated, nil
}

func (r *mentorRepository) List(ctx context.Context) ([]*model.Mentor, error) {
	iter := r.collection().OrderBy("Name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	mentors := make([]*model.Mentor, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate mentors")
		}

		m, err := docToMentor(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal mentor")
		}
		mentors = append(mentors, m)
	}

	return mentors, nil
}
