package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/service/embedding"
	"github.com/secmon-lab/mentorag/pkg/service/generation"
	"github.com/secmon-lab/mentorag/pkg/usecase"
	"github.com/secmon-lab/mentorag/pkg/utils/testutil"
)

func TestChat_Ask(t *testing.T) {
	ctx := context.Background()
	question := "Meu CPF é 123.456.789-09, qual a meta de pressão arterial?"

	t.Run("answers from the mentor's documents and stores the exchange", func(t *testing.T) {
		f := newFixture(t, testutil.TextClient("A meta de pressão é 130/80 mmHg [source_1]"), testutil.TextClient("unused"))
		m := f.mentor(t, types.ProfileStatusActive, activeProfile())
		content := f.seed(t, m.ID, "Hipertensão", "a meta de pressão arterial é 130/80", "diabetes exige controle glicêmico")

		ans, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, UserID: "user-1", Question: question})
		gt.NoError(t, err).Required()

		gt.Value(t, ans.Text).Equal("A meta de pressão é 130/80 mmHg")
		gt.Value(t, ans.ProviderUsed).Equal(types.ProviderRolePrimary)
		gt.Value(t, ans.ProviderName).Equal(types.ProviderOpenAI)
		gt.Value(t, ans.MentorName).Equal("Ana Souza")
		gt.A(t, ans.Citations).Length(1).Required()
		gt.Value(t, ans.Citations[0].SourceID).Equal(content.ID)
		gt.Value(t, f.secondary.Sessions()).Equal(0)

		// retrieval sees the question as asked
		texts := f.embedder.Texts()
		gt.Value(t, texts[len(texts)-1]).Equal(question)

		conv, err := f.repo.Conversation().Get(ctx, ans.ConversationID)
		gt.NoError(t, err).Required()
		gt.Value(t, conv.MentorID).Equal(m.ID)
		gt.Value(t, conv.UserID).Equal("user-1")
		gt.Bool(t, strings.HasPrefix(conv.Title, "Meu CPF é [CPF]")).True()

		msgs, err := f.repo.Message().ListByConversation(ctx, ans.ConversationID)
		gt.NoError(t, err).Required()
		gt.A(t, msgs).Length(2).Required()
		gt.Value(t, msgs[0].Sender).Equal(types.SenderUser)
		gt.Bool(t, strings.Contains(msgs[0].Text, "123.456.789-09")).False()
		gt.String(t, msgs[0].Text).Contains("[CPF]")
		gt.Value(t, msgs[1].Sender).Equal(types.SenderMentor)
		gt.Value(t, msgs[1].ID).Equal(ans.MessageID)
		gt.Value(t, msgs[1].ProviderUsed).Equal(types.ProviderRolePrimary)
		gt.A(t, msgs[1].Citations).Length(1)
	})

	t.Run("inactive mentor cannot answer", func(t *testing.T) {
		f := newFixture(t, testutil.TextClient("x"), testutil.TextClient("x"))
		m := f.mentor(t, types.ProfileStatusInactive, nil)

		_, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, Question: question})
		gt.Error(t, err).Is(usecase.ErrMentorInactive)
	})

	t.Run("first profile waiting for approval blocks the chat", func(t *testing.T) {
		f := newFixture(t, testutil.TextClient("x"), testutil.TextClient("x"))
		m := f.mentor(t, types.ProfileStatusPendingApproval, nil)

		_, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, Question: question})
		gt.Error(t, err).Is(usecase.ErrProfilePending)
	})

	t.Run("approved profile keeps answering while a new one waits", func(t *testing.T) {
		f := newFixture(t, testutil.TextClient("ok [source_1]"), testutil.TextClient("x"))
		m := f.mentor(t, types.ProfileStatusPendingApproval, activeProfile())
		f.seed(t, m.ID, "Hipertensão", "pressão arterial")

		ans, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, Question: "pressão?"})
		gt.NoError(t, err).Required()
		gt.Value(t, ans.Text).Equal("ok")
	})

	t.Run("unknown mentor", func(t *testing.T) {
		f := newFixture(t, testutil.TextClient("x"), testutil.TextClient("x"))
		_, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: "missing", Question: question})
		gt.Error(t, err).Is(usecase.ErrMentorNotFound)
	})

	t.Run("empty question", func(t *testing.T) {
		f := newFixture(t, testutil.TextClient("x"), testutil.TextClient("x"))
		m := f.mentor(t, types.ProfileStatusActive, activeProfile())
		_, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, Question: "  "})
		gt.Error(t, err).Is(usecase.ErrInvalidQuestion)
	})

	t.Run("mentor without documents", func(t *testing.T) {
		f := newFixture(t, testutil.TextClient("x"), testutil.TextClient("x"))
		m := f.mentor(t, types.ProfileStatusActive, activeProfile())

		ans, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, Question: question})
		gt.NoError(t, err).Required()
		gt.Value(t, ans.Text).Equal(usecase.NoContentMessage("Ana Souza"))
		gt.Value(t, ans.ProviderUsed).Equal(types.ProviderRoleNone)
		gt.A(t, ans.Citations).Length(0)
		gt.Value(t, f.primary.Sessions()).Equal(0)
	})

	t.Run("no chunk above the relevance floor", func(t *testing.T) {
		f := newFixture(t, testutil.TextClient("x"), testutil.TextClient("x"))
		m := f.mentor(t, types.ProfileStatusActive, activeProfile())
		f.seed(t, m.ID, "Diabetes", "diabetes tipo 2")

		ans, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, Question: "como tratar asma?"})
		gt.NoError(t, err).Required()
		gt.Value(t, ans.Text).Equal(generation.NoKnowledgeMessage("Ana Souza"))
		gt.Value(t, ans.ProviderUsed).Equal(types.ProviderRoleNone)
		gt.Value(t, f.primary.Sessions()).Equal(0)
	})

	t.Run("answer without source markers is replaced", func(t *testing.T) {
		f := newFixture(t, testutil.TextClient("A meta é 130/80."), testutil.TextClient("x"))
		m := f.mentor(t, types.ProfileStatusActive, activeProfile())
		f.seed(t, m.ID, "Hipertensão", "pressão arterial 130/80")

		ans, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, Question: question})
		gt.NoError(t, err).Required()
		gt.Value(t, ans.Text).Equal(usecase.MessageInvalidResponse)
		gt.A(t, ans.Citations).Length(0)

		msgs, err := f.repo.Message().ListByConversation(ctx, ans.ConversationID)
		gt.NoError(t, err).Required()
		gt.Value(t, msgs[1].Text).Equal(usecase.MessageInvalidResponse)
	})

	t.Run("answer citing a source far out of range is replaced", func(t *testing.T) {
		f := newFixture(t, testutil.TextClient("A meta é 130/80 [source_7]"), testutil.TextClient("x"))
		m := f.mentor(t, types.ProfileStatusActive, activeProfile())
		f.seed(t, m.ID, "Hipertensão", "pressão arterial 130/80")

		ans, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, Question: question})
		gt.NoError(t, err).Required()
		gt.Value(t, ans.Text).Equal(usecase.MessageInvalidResponse)
	})

	t.Run("both providers failing yields the apology", func(t *testing.T) {
		boom := errors.New("provider down")
		f := newFixture(t, testutil.FailingClient(boom), testutil.FailingClient(boom))
		m := f.mentor(t, types.ProfileStatusActive, activeProfile())
		f.seed(t, m.ID, "Hipertensão", "pressão arterial 130/80")

		ans, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, Question: question})
		gt.NoError(t, err).Required()
		gt.Value(t, ans.Text).Equal(generation.Apology)
		gt.Value(t, ans.ProviderUsed).Equal(types.ProviderRoleNone)
	})

	t.Run("preferred provider is asked first", func(t *testing.T) {
		f := newFixture(t, testutil.TextClient("primeiro [source_1]"), testutil.TextClient("segundo [source_1]"))
		m := f.mentor(t, types.ProfileStatusActive, activeProfile())
		f.seed(t, m.ID, "Hipertensão", "pressão arterial 130/80")

		ans, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, Question: question, Preferred: types.ProviderClaude})
		gt.NoError(t, err).Required()
		gt.Value(t, ans.Text).Equal("segundo")
		gt.Value(t, ans.ProviderUsed).Equal(types.ProviderRolePrimary)
		gt.Value(t, ans.ProviderName).Equal(types.ProviderClaude)
		gt.Value(t, f.primary.Sessions()).Equal(0)
	})

	t.Run("embedding outage fails and stores nothing", func(t *testing.T) {
		f := newFixture(t, testutil.TextClient("x"), testutil.TextClient("x"))
		m := f.mentor(t, types.ProfileStatusActive, activeProfile())
		f.seed(t, m.ID, "Hipertensão", "pressão arterial 130/80")
		f.embedder.Err = goerr.Wrap(embedding.ErrEmbeddingUnavailable, "quota exceeded")

		_, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, Question: question})
		gt.Error(t, err).Is(embedding.ErrEmbeddingUnavailable)

		convs, err := f.repo.Conversation().ListByMentor(ctx, m.ID)
		gt.NoError(t, err).Required()
		gt.A(t, convs).Length(0)
	})

	t.Run("follow-up questions join the conversation", func(t *testing.T) {
		f := newFixture(t, testutil.TextClient("ok [source_1]"), testutil.TextClient("x"))
		m := f.mentor(t, types.ProfileStatusActive, activeProfile())
		f.seed(t, m.ID, "Hipertensão", "pressão arterial 130/80")

		first, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, Question: "pressão alta?"})
		gt.NoError(t, err).Required()
		second, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, ConversationID: first.ConversationID, Question: "e pressão baixa?"})
		gt.NoError(t, err).Required()
		gt.Value(t, second.ConversationID).Equal(first.ConversationID)

		msgs, err := f.uc.Chat.Messages(ctx, first.ConversationID)
		gt.NoError(t, err).Required()
		gt.A(t, msgs).Length(4)

		convs, err := f.uc.Chat.Conversations(ctx, m.ID)
		gt.NoError(t, err).Required()
		gt.A(t, convs).Length(1)
	})

	t.Run("conversation of another mentor is not found", func(t *testing.T) {
		f := newFixture(t, testutil.TextClient("ok [source_1]"), testutil.TextClient("x"))
		m := f.mentor(t, types.ProfileStatusActive, activeProfile())
		other := f.mentor(t, types.ProfileStatusActive, activeProfile())
		f.seed(t, m.ID, "Hipertensão", "pressão arterial 130/80")
		f.seed(t, other.ID, "Hipertensão", "pressão arterial 130/80")

		first, err := f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, Question: "pressão?"})
		gt.NoError(t, err).Required()

		_, err = f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: other.ID, ConversationID: first.ConversationID, Question: "pressão?"})
		gt.Error(t, err).Is(usecase.ErrConversationNotFound)

		_, err = f.uc.Chat.Ask(ctx, usecase.AskInput{MentorID: m.ID, ConversationID: "missing", Question: "pressão?"})
		gt.Error(t, err).Is(usecase.ErrConversationNotFound)
	})
}

func TestChat_Messages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.TextClient("x"), testutil.TextClient("x"))
	m := f.mentor(t, types.ProfileStatusActive, activeProfile())

	conv, err := f.repo.Conversation().Create(ctx, &model.Conversation{MentorID: m.ID, Title: "t"})
	gt.NoError(t, err).Required()
	_, err = f.repo.Message().Create(ctx, &model.Message{
		ConversationID: conv.ID,
		Sender:         types.SenderUser,
		Text:           "[PACIENTE_1] tem  pressão alta [source_2]",
	})
	gt.NoError(t, err).Required()

	msgs, err := f.uc.Chat.Messages(ctx, conv.ID)
	gt.NoError(t, err).Required()
	gt.A(t, msgs).Length(1).Required()
	gt.Value(t, msgs[0].Text).Equal("paciente tem pressão alta")

	// stored text is untouched
	stored, err := f.repo.Message().ListByConversation(ctx, conv.ID)
	gt.NoError(t, err).Required()
	gt.String(t, stored[0].Text).Contains("[PACIENTE_1]")

	_, err = f.uc.Chat.Messages(ctx, "missing")
	gt.Error(t, err).Is(usecase.ErrConversationNotFound)
}
