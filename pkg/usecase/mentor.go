package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/interfaces"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
)

// MentorStats summarizes a mentor's corpus and usage
type MentorStats struct {
	Contents          int
	ProcessedContents int
	Chunks            int
	Conversations     int
	Answers           int
}

type MentorUseCase struct {
	repo interfaces.Repository
}

func NewMentorUseCase(repo interfaces.Repository) *MentorUseCase {
	return &MentorUseCase{
		repo: repo,
	}
}

// Create registers a mentor. New mentors are INACTIVE until a profile is approved.
func (uc *MentorUseCase) Create(ctx context.Context, name, specialty string) (*model.Mentor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, goerr.Wrap(ErrInvalidMentor, "mentor name is required")
	}

	created, err := uc.repo.Mentor().Create(ctx, &model.Mentor{
		Name:          name,
		Specialty:     strings.TrimSpace(specialty),
		ProfileStatus: types.ProfileStatusInactive,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create mentor")
	}
	return created, nil
}

func (uc *MentorUseCase) Get(ctx context.Context, id model.MentorID) (*model.Mentor, error) {
	mentor, err := uc.repo.Mentor().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrMentorNotFound, "mentor not found", goerr.V(MentorIDKey, id))
	}
	return mentor, nil
}

func (uc *MentorUseCase) List(ctx context.Context) ([]*model.Mentor, error) {
	mentors, err := uc.repo.Mentor().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list mentors")
	}
	return mentors, nil
}

// Stats counts a mentor's documents, chunks, conversations and answers
func (uc *MentorUseCase) Stats(ctx context.Context, id model.MentorID) (*MentorStats, error) {
	if _, err := uc.repo.Mentor().Get(ctx, id); err != nil {
		return nil, goerr.Wrap(ErrMentorNotFound, "mentor not found", goerr.V(MentorIDKey, id))
	}

	var stats MentorStats

	contents, err := uc.repo.Content().ListByMentor(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list contents", goerr.V(MentorIDKey, id))
	}
	stats.Contents = len(contents)
	for _, c := range contents {
		if c.Status == types.ContentStatusProcessed {
			stats.ProcessedContents++
			stats.Chunks += c.ChunkCount
		}
	}

	convs, err := uc.repo.Conversation().ListByMentor(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list conversations", goerr.V(MentorIDKey, id))
	}
	stats.Conversations = len(convs)
	for _, conv := range convs {
		msgs, err := uc.repo.Message().ListByConversation(ctx, conv.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list messages", goerr.V(ConversationIDKey, conv.ID))
		}
		for _, m := range msgs {
			if m.Sender == types.SenderMentor {
				stats.Answers++
			}
		}
	}

	return &stats, nil
}
