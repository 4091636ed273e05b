package model

import "github.com/secmon-lab/mentorag/pkg/domain/types"

// GenerationResult is the outcome of a grounded generation.
// ProviderUsed is none when no provider produced Text; Text is then a fixed message.
type GenerationResult struct {
	Text         string
	Citations    []Citation // offered citations the text refers to
	Sources      []Citation // every citation offered to the provider
	ProviderUsed types.ProviderRole
	ProviderName types.ProviderName // backend behind ProviderUsed, empty for none
}
