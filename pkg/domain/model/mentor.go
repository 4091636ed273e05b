package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
)

// MentorID is a UUID-based identifier for Mentor
type MentorID string

// NewMentorID generates a new UUID v4 MentorID
func NewMentorID() MentorID {
	return MentorID(uuid.New().String())
}

// Mentor is a knowledge owner whose documents ground the answers.
// ActiveProfile is the approved persona; PendingProfile holds the latest
// synthesized candidate waiting for review.
type Mentor struct {
	ID               MentorID
	Name             string
	Specialty        string
	ActiveProfile    *StyleProfile
	PendingProfile   *StyleProfile
	ProfileStatus    types.ProfileStatus
	ProfileUpdatedAt time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks required fields before persistence
func (m *Mentor) Validate() error {
	if m.Name == "" {
		return goerr.Wrap(ErrInvalidRecord, "mentor name is required", goerr.V(MentorIDKey, m.ID))
	}
	if m.ProfileStatus != "" && !m.ProfileStatus.IsValid() {
		return goerr.Wrap(ErrInvalidRecord, "invalid profile status",
			goerr.V(MentorIDKey, m.ID),
			goerr.V("status", m.ProfileStatus))
	}
	for _, p := range []*StyleProfile{m.ActiveProfile, m.PendingProfile} {
		if p == nil {
			continue
		}
		if err := p.Validate(); err != nil {
			return goerr.Wrap(err, "invalid style profile", goerr.V(MentorIDKey, m.ID))
		}
	}
	return nil
}

// CurrentProfile returns the approved profile the chat path may use, or nil.
// A pending candidate never replaces it before review.
func (m *Mentor) CurrentProfile() *StyleProfile {
	if m.ProfileStatus == types.ProfileStatusInactive {
		return nil
	}
	return m.ActiveProfile
}
