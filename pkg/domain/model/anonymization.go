package model

import "github.com/secmon-lab/mentorag/pkg/domain/types"

// Span is a half-open byte range in the original text
type Span struct {
	Start int
	End   int
}

// Replacement records a single substitution made by the anonymizer
type Replacement struct {
	Original    string
	Placeholder string
	Type        types.PIIType
	Span        *Span // set only for entity replacements on original offsets
}

// AnonymizationResult holds the anonymized text next to the untouched input.
// OriginalText must never be persisted.
type AnonymizationResult struct {
	AnonymizedText string
	OriginalText   string
	Replacements   []Replacement
}

// AnonymizerStats describes the active anonymizer
type AnonymizerStats struct {
	Strategy            types.AnonymizerStrategy
	NERAvailable        bool
	CachedConversations int
	PatternCounts       map[types.PIIType]int
}

// Entity is a named entity found by a recognizer, located on the original text
type Entity struct {
	Text     string
	Category types.EntityCategory
	Span     Span
}
