package testutil

import (
	"strings"
	"sync"
)

// WordTokenizer maps each whitespace separated word to one token.
// Decoding joins words with a single space.
type WordTokenizer struct {
	mu    sync.Mutex
	ids   map[string]int
	words []string
}

func NewWordTokenizer() *WordTokenizer {
	return &WordTokenizer{ids: map[string]int{}}
}

func (w *WordTokenizer) Encode(text string) []int {
	w.mu.Lock()
	defer w.mu.Unlock()

	var tokens []int
	for _, f := range strings.Fields(text) {
		id, ok := w.ids[f]
		if !ok {
			id = len(w.words)
			w.ids[f] = id
			w.words = append(w.words, f)
		}
		tokens = append(tokens, id)
	}
	return tokens
}

func (w *WordTokenizer) Decode(tokens []int) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = w.words[t]
	}
	return strings.Join(words, " ")
}
