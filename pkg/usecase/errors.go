package usecase

import (
	"errors"

	"github.com/secmon-lab/mentorag/pkg/service/embedding"
)

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrMentorNotFound       = errors.New("mentor not found")
	ErrContentNotFound      = errors.New("content not found")
	ErrConversationNotFound = errors.New("conversation not found")

	// Availability errors
	ErrMentorInactive   = errors.New("mentor bot is inactive")
	ErrProfilePending   = errors.New("mentor profile is waiting for approval")
	ErrNoPendingProfile = errors.New("no pending profile to review")

	// Input errors
	ErrInvalidQuestion = errors.New("question is empty")
	ErrQueryTooShort   = errors.New("search query is too short")
	ErrEmptyDocument   = errors.New("document has no text")
	ErrInvalidMentor   = errors.New("invalid mentor")

	// Wiring errors
	ErrNotConfigured = errors.New("use case dependency is not configured")
)

// Context keys for error values
const (
	MentorIDKey       = "mentor_id"
	ContentIDKey      = "content_id"
	ConversationIDKey = "conversation_id"
)

// User-facing messages, in the language the chat answers in
const (
	MessageMentorInactive       = "O bot de IA deste mentor esta inativo."
	MessageProfilePending       = "O perfil do bot esta aguardando aprovacao."
	MessageEmbeddingUnavailable = "Servico de embeddings temporariamente indisponivel."
	MessageQueryTooShort        = "A busca deve ter pelo menos 3 caracteres"
	MessageInvalidResponse      = "Desculpe, ocorreu um erro ao processar a resposta. Por favor, tente novamente."
)

// UserMessage returns the message shown to a user for errors they can act on
func UserMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrMentorInactive):
		return MessageMentorInactive, true
	case errors.Is(err, ErrProfilePending):
		return MessageProfilePending, true
	case errors.Is(err, embedding.ErrEmbeddingUnavailable):
		return MessageEmbeddingUnavailable, true
	case errors.Is(err, ErrQueryTooShort):
		return MessageQueryTooShort, true
	default:
		return "", false
	}
}
