// Package anonymizer removes personal data from conversational text before it is stored.
package anonymizer

import (
	"context"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/interfaces"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
)

// DefaultCounterCapacity is the number of conversations whose entity counters are kept
const DefaultCounterCapacity = 1024

// Anonymizer implements interfaces.Anonymizer. The regex strategy only applies
// the structured patterns; the ner strategy replaces named entities first.
type Anonymizer struct {
	strategy        types.AnonymizerStrategy
	recognizer      interfaces.EntityRecognizer
	counterCapacity int

	countersMu sync.Mutex
	counters   *lru.Cache[model.ConversationID, *entityCounter]

	statsMu sync.Mutex
	counts  map[types.PIIType]int
}

var _ interfaces.Anonymizer = &Anonymizer{}

// Option is a functional option for Anonymizer configuration
type Option func(*Anonymizer)

// WithRecognizer sets the entity recognizer used by the ner strategy.
// The gazetteer recognizer is used when none is given.
func WithRecognizer(r interfaces.EntityRecognizer) Option {
	return func(a *Anonymizer) {
		a.recognizer = r
	}
}

// WithCounterCapacity bounds how many conversations keep entity counters.
// The least recently used conversation restarts numbering when evicted.
func WithCounterCapacity(n int) Option {
	return func(a *Anonymizer) {
		a.counterCapacity = n
	}
}

// New creates an anonymizer for the given strategy
func New(strategy types.AnonymizerStrategy, opts ...Option) (*Anonymizer, error) {
	if !strategy.IsValid() {
		return nil, goerr.New("invalid anonymizer strategy", goerr.V("strategy", strategy))
	}

	a := &Anonymizer{
		strategy:        strategy,
		counterCapacity: DefaultCounterCapacity,
		counts:          make(map[types.PIIType]int),
	}
	for _, opt := range opts {
		opt(a)
	}

	if strategy == types.AnonymizerRegex {
		a.recognizer = nil
		return a, nil
	}

	if a.recognizer == nil {
		a.recognizer = NewGazetteer()
	}
	if a.counterCapacity <= 0 {
		return nil, goerr.New("counter capacity must be positive", goerr.V("capacity", a.counterCapacity))
	}
	counters, err := lru.New[model.ConversationID, *entityCounter](a.counterCapacity)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create entity counter cache")
	}
	a.counters = counters

	return a, nil
}

// Anonymize returns text with personal data replaced by placeholders.
// OriginalText is the input as given.
func (a *Anonymizer) Anonymize(ctx context.Context, text string, conversationID model.ConversationID) *model.AnonymizationResult {
	result := &model.AnonymizationResult{
		AnonymizedText: text,
		OriginalText:   text,
		Replacements:   []model.Replacement{},
	}
	if strings.TrimSpace(text) == "" {
		return result
	}

	anonymized := text
	if a.recognizer != nil {
		var replaced []model.Replacement
		anonymized, replaced = a.replaceEntities(ctx, anonymized, conversationID)
		result.Replacements = append(result.Replacements, replaced...)
	}

	anonymized, replaced := replacePatterns(anonymized)
	result.Replacements = append(result.Replacements, replaced...)
	result.AnonymizedText = anonymized

	a.record(result.Replacements)
	if len(result.Replacements) > 0 {
		logging.From(ctx).Debug("text anonymized",
			"conversation_id", conversationID,
			"replacements", len(result.Replacements),
		)
	}

	return result
}

func (a *Anonymizer) record(replacements []model.Replacement) {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	for _, r := range replacements {
		a.counts[r.Type]++
	}
}

// Stats reports the active strategy and how many replacements were made per type
func (a *Anonymizer) Stats() model.AnonymizerStats {
	a.statsMu.Lock()
	counts := make(map[types.PIIType]int, len(a.counts))
	for k, v := range a.counts {
		counts[k] = v
	}
	a.statsMu.Unlock()

	stats := model.AnonymizerStats{
		Strategy:      a.strategy,
		NERAvailable:  a.recognizer != nil,
		PatternCounts: counts,
	}
	if a.counters != nil {
		stats.CachedConversations = a.counters.Len()
	}
	return stats
}
