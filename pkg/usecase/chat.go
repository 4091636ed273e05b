package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/interfaces"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/service/anonymizer"
	"github.com/secmon-lab/mentorag/pkg/service/citation"
	"github.com/secmon-lab/mentorag/pkg/service/generation"
	"github.com/secmon-lab/mentorag/pkg/service/ranker"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
)

// NoContentMessage is the answer for a mentor without ingested documents
func NoContentMessage(mentorName string) string {
	return fmt.Sprintf("Desculpe, mas Dr(a). %s ainda nao possui conteudo disponivel.", mentorName)
}

// AskInput is one question sent to a mentor
type AskInput struct {
	MentorID       model.MentorID
	ConversationID model.ConversationID // empty starts a new conversation
	UserID         string
	Question       string
	Preferred      types.ProviderName // overrides the configured preferred provider
}

// Answer is the stored reply to a question
type Answer struct {
	ConversationID model.ConversationID
	MessageID      model.MessageID
	MentorName     string
	Text           string // markers stripped
	Citations      []model.Citation
	ProviderUsed   types.ProviderRole
	ProviderName   types.ProviderName
}

type ChatUseCase struct {
	repo       interfaces.Repository
	embedder   interfaces.Embedder
	anonymizer interfaces.Anonymizer
	generator  generation.Service
	rag        RAGConfig
}

func NewChatUseCase(repo interfaces.Repository, embedder interfaces.Embedder, anon interfaces.Anonymizer, generator generation.Service, rag RAGConfig) *ChatUseCase {
	return &ChatUseCase{
		repo:       repo,
		embedder:   embedder,
		anonymizer: anon,
		generator:  generator,
		rag:        rag,
	}
}

// Ask answers a question from the mentor's documents and stores the exchange.
// Nothing is written unless an answer, possibly a fixed message, was produced.
// An embedding failure is returned as is so callers can match
// embedding.ErrEmbeddingUnavailable.
func (uc *ChatUseCase) Ask(ctx context.Context, input AskInput) (*Answer, error) {
	if uc.embedder == nil || uc.anonymizer == nil || uc.generator == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "chat requires an embedder, an anonymizer and a generator")
	}
	if strings.TrimSpace(input.Question) == "" {
		return nil, goerr.Wrap(ErrInvalidQuestion, "question is required", goerr.V(MentorIDKey, input.MentorID))
	}

	mentor, err := uc.repo.Mentor().Get(ctx, input.MentorID)
	if err != nil {
		return nil, goerr.Wrap(ErrMentorNotFound, "mentor not found", goerr.V(MentorIDKey, input.MentorID))
	}
	persona, err := availableProfile(mentor)
	if err != nil {
		return nil, err
	}

	convID := input.ConversationID
	isNew := convID == ""
	if isNew {
		convID = model.NewConversationID()
	} else {
		conv, err := uc.repo.Conversation().Get(ctx, convID)
		if err != nil || conv.MentorID != mentor.ID {
			return nil, goerr.Wrap(ErrConversationNotFound, "conversation not found",
				goerr.V(ConversationIDKey, convID),
				goerr.V(MentorIDKey, mentor.ID))
		}
	}

	logger := logging.From(ctx).With(MentorIDKey, mentor.ID, ConversationIDKey, convID)

	// The stored copy is anonymized; retrieval and generation see the question as asked.
	anon := uc.anonymizer.Anonymize(ctx, input.Question, convID)

	queryVec, err := uc.embedder.Embed(ctx, input.Question)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed question", goerr.V(MentorIDKey, mentor.ID))
	}

	result, err := uc.answer(ctx, mentor, persona, input, queryVec)
	if err != nil {
		return nil, err
	}

	text := result.Text
	citations := result.Citations
	if err := citation.Validate(text, result.Sources); err != nil {
		logger.Warn("discarding answer with invalid citations", "error", err, "provider", result.ProviderName)
		text = MessageInvalidResponse
		citations = []model.Citation{}
	}
	text = citation.StripMarkers(text)

	if isNew {
		if _, err := uc.repo.Conversation().Create(ctx, &model.Conversation{
			ID:       convID,
			MentorID: mentor.ID,
			UserID:   input.UserID,
			Title:    model.Excerpt(anon.AnonymizedText, model.ConversationTitleLength),
		}); err != nil {
			return nil, goerr.Wrap(err, "failed to create conversation", goerr.V(ConversationIDKey, convID))
		}
	}

	if _, err := uc.repo.Message().Create(ctx, &model.Message{
		ConversationID: convID,
		Sender:         types.SenderUser,
		Text:           anon.AnonymizedText,
		Citations:      []model.Citation{},
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to store question", goerr.V(ConversationIDKey, convID))
	}

	reply, err := uc.repo.Message().Create(ctx, &model.Message{
		ConversationID: convID,
		Sender:         types.SenderMentor,
		Text:           text,
		Citations:      citations,
		ProviderUsed:   result.ProviderUsed,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store answer", goerr.V(ConversationIDKey, convID))
	}

	if err := uc.repo.Conversation().Touch(ctx, convID); err != nil {
		return nil, goerr.Wrap(err, "failed to update conversation", goerr.V(ConversationIDKey, convID))
	}

	logger.Info("question answered",
		"provider_used", result.ProviderUsed,
		"provider", result.ProviderName,
		"citations", len(citations),
		"pii_replaced", len(anon.Replacements),
	)

	return &Answer{
		ConversationID: convID,
		MessageID:      reply.ID,
		MentorName:     mentor.Name,
		Text:           text,
		Citations:      citations,
		ProviderUsed:   result.ProviderUsed,
		ProviderName:   result.ProviderName,
	}, nil
}

// answer retrieves the mentor's most similar chunks and generates from them
func (uc *ChatUseCase) answer(ctx context.Context, mentor *model.Mentor, persona *model.StyleProfile, input AskInput, queryVec []float32) (*model.GenerationResult, error) {
	chunks, err := uc.repo.Chunk().ListByMentor(ctx, mentor.ID, uc.rag.ChatChunkLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list chunks", goerr.V(MentorIDKey, mentor.ID))
	}
	if len(chunks) == 0 {
		return &model.GenerationResult{
			Text:         NoContentMessage(mentor.Name),
			Citations:    []model.Citation{},
			ProviderUsed: types.ProviderRoleNone,
		}, nil
	}

	vectors := make([][]float32, len(chunks))
	for i, c := range chunks {
		vectors[i] = c.Embedding
	}
	matches := ranker.Rank(queryVec, vectors, uc.rag.ChatTopK, uc.rag.ChatMinSimilarity)

	contextChunks := make([]*model.Chunk, len(matches))
	for i, m := range matches {
		contextChunks[i] = chunks[m.Index]
	}

	preferred := input.Preferred
	if preferred == "" {
		preferred = uc.rag.PreferredProvider
	}

	result, err := uc.generator.Generate(ctx, generation.Input{
		Question:    input.Question,
		Context:     contextChunks,
		PersonaName: mentor.Name,
		Specialty:   mentor.Specialty,
		Profile:     persona,
		Preferred:   preferred,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate answer", goerr.V(MentorIDKey, mentor.ID))
	}
	return result, nil
}

// availableProfile returns the approved profile the mentor answers with. A
// mentor whose only profile still waits for review cannot answer yet.
func availableProfile(mentor *model.Mentor) (*model.StyleProfile, error) {
	switch mentor.ProfileStatus {
	case types.ProfileStatusInactive, "":
		return nil, goerr.Wrap(ErrMentorInactive, "mentor bot is inactive", goerr.V(MentorIDKey, mentor.ID))
	}

	p := mentor.CurrentProfile()
	if p == nil {
		return nil, goerr.Wrap(ErrProfilePending, "mentor profile is waiting for approval", goerr.V(MentorIDKey, mentor.ID))
	}
	return p, nil
}

// Conversations lists a mentor's conversations, most recently active first
func (uc *ChatUseCase) Conversations(ctx context.Context, mentorID model.MentorID) ([]*model.Conversation, error) {
	if _, err := uc.repo.Mentor().Get(ctx, mentorID); err != nil {
		return nil, goerr.Wrap(ErrMentorNotFound, "mentor not found", goerr.V(MentorIDKey, mentorID))
	}

	convs, err := uc.repo.Conversation().ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list conversations", goerr.V(MentorIDKey, mentorID))
	}
	return convs, nil
}

// Messages returns a conversation oldest first, ready for display: person
// placeholders read as plain words and no source marker is left.
func (uc *ChatUseCase) Messages(ctx context.Context, convID model.ConversationID) ([]*model.Message, error) {
	if _, err := uc.repo.Conversation().Get(ctx, convID); err != nil {
		return nil, goerr.Wrap(ErrConversationNotFound, "conversation not found", goerr.V(ConversationIDKey, convID))
	}

	msgs, err := uc.repo.Message().ListByConversation(ctx, convID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list messages", goerr.V(ConversationIDKey, convID))
	}

	for _, m := range msgs {
		m.Text = citation.StripMarkers(anonymizer.Humanize(m.Text))
	}
	return msgs, nil
}
