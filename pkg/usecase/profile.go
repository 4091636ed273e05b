package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/interfaces"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
)

// ProfileUseCase is the review gate between a synthesized style profile and
// the chat path
type ProfileUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

func NewProfileUseCase(repo interfaces.Repository) *ProfileUseCase {
	return &ProfileUseCase{
		repo: repo,
		now:  time.Now,
	}
}

// Show returns the mentor with its approved and pending profiles
func (uc *ProfileUseCase) Show(ctx context.Context, mentorID model.MentorID) (*model.Mentor, error) {
	mentor, err := uc.repo.Mentor().Get(ctx, mentorID)
	if err != nil {
		return nil, goerr.Wrap(ErrMentorNotFound, "mentor not found", goerr.V(MentorIDKey, mentorID))
	}
	return mentor, nil
}

// Approve publishes the pending profile: PENDING_APPROVAL -> ACTIVE
func (uc *ProfileUseCase) Approve(ctx context.Context, mentorID model.MentorID) (*model.Mentor, error) {
	updated, err := uc.review(ctx, mentorID, func(m *model.Mentor) {
		m.ActiveProfile = m.PendingProfile
		m.PendingProfile = nil
		m.ProfileStatus = types.ProfileStatusActive
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to approve profile", goerr.V(MentorIDKey, mentorID))
	}

	logging.From(ctx).Info("profile approved",
		MentorIDKey, mentorID,
		"source", updated.ActiveProfile.AnalysisSource)
	return updated, nil
}

// Reject discards the pending profile. The mentor goes back to its approved
// profile, or to INACTIVE when it never had one.
func (uc *ProfileUseCase) Reject(ctx context.Context, mentorID model.MentorID) (*model.Mentor, error) {
	updated, err := uc.review(ctx, mentorID, func(m *model.Mentor) {
		m.PendingProfile = nil
		m.ProfileStatus = types.ProfileStatusInactive
		if m.ActiveProfile != nil {
			m.ProfileStatus = types.ProfileStatusActive
		}
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reject profile", goerr.V(MentorIDKey, mentorID))
	}

	logging.From(ctx).Info("profile rejected", MentorIDKey, mentorID, "status", updated.ProfileStatus)
	return updated, nil
}

// review applies decide to a mentor that has a pending profile. The pending
// state is checked on the record being written, not on an earlier read.
func (uc *ProfileUseCase) review(ctx context.Context, mentorID model.MentorID, decide func(m *model.Mentor)) (*model.Mentor, error) {
	if _, err := uc.repo.Mentor().Get(ctx, mentorID); err != nil {
		return nil, goerr.Wrap(ErrMentorNotFound, "mentor not found", goerr.V(MentorIDKey, mentorID))
	}

	return uc.repo.Mentor().Update(ctx, mentorID, func(m *model.Mentor) error {
		if m.ProfileStatus != types.ProfileStatusPendingApproval || m.PendingProfile == nil {
			return goerr.Wrap(ErrNoPendingProfile, "no pending profile",
				goerr.V(MentorIDKey, mentorID),
				goerr.V("status", m.ProfileStatus))
		}
		decide(m)
		m.ProfileUpdatedAt = uc.now().UTC()
		return nil
	})
}
