package testutil

import (
	"context"
	"strings"
	"sync"
	"time"
)

// KeywordEmbedder embeds text as keyword counts, one dimension per keyword plus
// a small constant one, so texts sharing a keyword are similar and others are not.
type KeywordEmbedder struct {
	Keywords []string
	Err      error         // fails every call, or only those matching FailOn
	FailOn   string        // restricts Err to texts containing it
	Delay    time.Duration // holds each call to observe concurrency

	mu       sync.Mutex
	texts    []string
	inFlight int
	peak     int
}

func (e *KeywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.texts = append(e.texts, text)
	e.inFlight++
	e.peak = max(e.peak, e.inFlight)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inFlight--
		e.mu.Unlock()
	}()

	if e.Delay > 0 {
		select {
		case <-time.After(e.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if e.Err != nil && (e.FailOn == "" || strings.Contains(text, e.FailOn)) {
		return nil, e.Err
	}

	lower := strings.ToLower(text)
	vec := make([]float32, len(e.Keywords)+1)
	for i, k := range e.Keywords {
		vec[i] = float32(strings.Count(lower, strings.ToLower(k)))
	}
	vec[len(e.Keywords)] = 0.01
	return vec, nil
}

// Texts returns every text embedded so far
func (e *KeywordEmbedder) Texts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.texts...)
}

// Peak returns the highest number of concurrent calls observed
func (e *KeywordEmbedder) Peak() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.peak
}
