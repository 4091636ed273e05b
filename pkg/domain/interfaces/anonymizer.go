package interfaces

import (
	"context"

	"github.com/secmon-lab/mentorag/pkg/domain/model"
)

// Anonymizer replaces personal data in text before it is stored
type Anonymizer interface {
	// Anonymize never fails. conversationID may be empty.
	Anonymize(ctx context.Context, text string, conversationID model.ConversationID) *model.AnonymizationResult
	Stats() model.AnonymizerStats
}

// EntityRecognizer finds named entities in text
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]model.Entity, error)
}
