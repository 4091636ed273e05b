package chunker

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the canonical tokenizer shared by chunking and token budgets
const DefaultEncoding = "cl100k_base"

// Tokenizer converts text to tokens and back
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken returns a Tokenizer backed by the given tiktoken encoding
func NewTiktoken(encoding string) (Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load tokenizer encoding", goerr.V("encoding", encoding))
	}
	return &tiktokenTokenizer{enc: enc}, nil
}

func (t *tiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *tiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// CountTokens returns the number of tokens of text
func CountTokens(t Tokenizer, text string) int {
	return len(t.Encode(text))
}
