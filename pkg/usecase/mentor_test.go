package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/usecase"
	"github.com/secmon-lab/mentorag/pkg/utils/testutil"
)

func TestMentor_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.TextClient("x"), testutil.TextClient("x"))

	m, err := f.uc.Mentor.Create(ctx, " Ana Souza ", "Cardiologia")
	gt.NoError(t, err).Required()
	gt.Value(t, m.Name).Equal("Ana Souza")
	gt.Value(t, m.ProfileStatus).Equal(types.ProfileStatusInactive)

	_, err = f.uc.Mentor.Create(ctx, "  ", "Cardiologia")
	gt.Error(t, err).Is(usecase.ErrInvalidMentor)

	got, err := f.uc.Mentor.Get(ctx, m.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Specialty).Equal("Cardiologia")

	_, err = f.uc.Mentor.Get(ctx, "missing")
	gt.Error(t, err).Is(usecase.ErrMentorNotFound)

	list, err := f.uc.Mentor.List(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, list).Length(1)
}

func TestMentor_Stats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.TextClient("ok [source_1]"), testutil.TextClient("x"))
	m := f.mentor(t, types.ProfileStatusActive, activeProfile())
	f.seed(t, m.ID, "Hipertensão", "pressão um", "pressão dois")

	first, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, Question: "pressão?"})
	gt.NoError(t, err).Required()
	_, err = f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, ConversationID: first.ConversationID, Question: "pressão alta?"})
	gt.NoError(t, err).Required()
	_, err = f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, Question: "pressão baixa?"})
	gt.NoError(t, err).Required()

	stats, err := f.uc.Mentor.Stats(ctx, m.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, *stats).Equal(usecase.MentorStats{
		Contents:          1,
		ProcessedContents: 1,
		Chunks:            2,
		Conversations:     2,
		Answers:           3,
	})
}
