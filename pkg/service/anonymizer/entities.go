package anonymizer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
)

// entityCounter numbers entities of each category within one conversation.
// mu is held for a whole Anonymize call so that concurrent messages of the
// same conversation never share an index.
type entityCounter struct {
	mu     sync.Mutex
	counts map[types.EntityCategory]int
}

func (c *entityCounter) next(category types.EntityCategory) int {
	c.counts[category]++
	return c.counts[category]
}

func (a *Anonymizer) counter(conversationID model.ConversationID) *entityCounter {
	a.countersMu.Lock()
	defer a.countersMu.Unlock()

	if c, ok := a.counters.Get(conversationID); ok {
		return c
	}
	c := &entityCounter{counts: make(map[types.EntityCategory]int)}
	a.counters.Add(conversationID, c)
	return c
}

// replaceEntities substitutes recognized entities on the original offsets.
// Numbers follow reading order; substitution runs back to front so earlier
// offsets stay valid. A recognizer failure leaves the text to the pattern passes.
func (a *Anonymizer) replaceEntities(ctx context.Context, text string, conversationID model.ConversationID) (string, []model.Replacement) {
	found, err := a.recognizer.Recognize(ctx, text)
	if err != nil {
		logging.From(ctx).Warn("entity recognition failed, applying patterns only", "error", err)
		return text, nil
	}

	entities := selectEntities(text, found)
	if len(entities) == 0 {
		return text, nil
	}

	labels := make([]string, len(entities))
	if conversationID != "" {
		c := a.counter(conversationID)
		c.mu.Lock()
		for i, e := range entities {
			labels[i] = fmt.Sprintf("[%s_%d]", e.Category.PIIType(), c.next(e.Category))
		}
		c.mu.Unlock()
	} else {
		for i, e := range entities {
			labels[i] = placeholder(e.Category.PIIType())
		}
	}

	replacements := make([]model.Replacement, len(entities))
	for i := len(entities) - 1; i >= 0; i-- {
		e := entities[i]
		text = text[:e.Span.Start] + labels[i] + text[e.Span.End:]
		span := e.Span
		replacements[i] = model.Replacement{
			Original:    e.Text,
			Placeholder: labels[i],
			Type:        e.Category.PIIType(),
			Span:        &span,
		}
	}

	return text, replacements
}

// selectEntities keeps entities whose span is valid on text, skips anything
// touching an existing placeholder and resolves overlaps in favor of the
// earlier, then longer, entity. The result is sorted by start offset.
func selectEntities(text string, found []model.Entity) []model.Entity {
	existing := placeholderPattern.FindAllStringIndex(text, -1)

	candidates := make([]model.Entity, 0, len(found))
	for _, e := range found {
		if !e.Category.IsValid() {
			continue
		}
		if e.Span.Start < 0 || e.Span.End > len(text) || e.Span.Start >= e.Span.End {
			continue
		}
		e.Text = text[e.Span.Start:e.Span.End]
		if strings.TrimSpace(e.Text) == "" || strings.ContainsAny(e.Text, "[]") {
			continue
		}
		if overlapsAny(e.Span, existing) {
			continue
		}
		candidates = append(candidates, e)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Span.Start != candidates[j].Span.Start {
			return candidates[i].Span.Start < candidates[j].Span.Start
		}
		return candidates[i].Span.End > candidates[j].Span.End
	})

	selected := make([]model.Entity, 0, len(candidates))
	end := -1
	for _, e := range candidates {
		if e.Span.Start < end {
			continue
		}
		selected = append(selected, e)
		end = e.Span.End
	}
	return selected
}

func overlapsAny(span model.Span, ranges [][]int) bool {
	for _, r := range ranges {
		if span.Start < r[1] && r[0] < span.End {
			return true
		}
	}
	return false
}
