package chunker_test

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mentorag/pkg/service/chunker"
)

// wordTokenizer maps each whitespace separated word to one token
type wordTokenizer struct {
	ids   map[string]int
	words []string
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{ids: map[string]int{}}
}

func (w *wordTokenizer) Encode(text string) []int {
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

func (w *wordTokenizer) Decode(tokens []int) string {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = w.words[t]
	}
	return strings.Join(words, " ")
}

// byteTokenizer maps each byte to one token, like a byte-level BPE on rare runes
type byteTokenizer struct{}

func (byteTokenizer) Encode(text string) []int {
	tokens := make([]int, len(text))
	for i := range len(text) {
		tokens[i] = int(text[i])
	}
	return tokens
}

func (byteTokenizer) Decode(tokens []int) string {
	b := make([]byte, len(tokens))
	for i, t := range tokens {
		b[i] = byte(t)
	}
	return string(b)
}

func makeText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := chunker.New(newWordTokenizer())
		gt.NoError(t, err).Required()
		gt.Value(t, c.Size()).Equal(500)
		gt.Value(t, c.Overlap()).Equal(50)
	})

	t.Run("overlap not smaller than size", func(t *testing.T) {
		_, err := chunker.New(newWordTokenizer(), chunker.WithChunkSize(10), chunker.WithOverlap(10))
		gt.Error(t, err).Is(chunker.ErrInvalidWindow)
	})

	t.Run("nil tokenizer", func(t *testing.T) {
		_, err := chunker.New(nil)
		gt.Error(t, err)
	})
}

func TestChunk(t *testing.T) {
	t.Run("empty input returns no chunks", func(t *testing.T) {
		c, err := chunker.New(newWordTokenizer())
		gt.NoError(t, err).Required()
		gt.A(t, c.Chunk("")).Length(0)
		gt.A(t, c.Chunk("   \n")).Length(0)
	})

	t.Run("short input is one window", func(t *testing.T) {
		c, err := chunker.New(newWordTokenizer(), chunker.WithChunkSize(10), chunker.WithOverlap(3))
		gt.NoError(t, err).Required()
		chunks := c.Chunk("um dois três")
		gt.A(t, chunks).Length(1)
		gt.Value(t, chunks[0]).Equal("um dois três")
	})

	t.Run("windows overlap and reconstruct the token stream", func(t *testing.T) {
		tok := newWordTokenizer()
		c, err := chunker.New(tok, chunker.WithChunkSize(10), chunker.WithOverlap(3))
		gt.NoError(t, err).Required()

		text := makeText(25)
		chunks := c.Chunk(text)
		gt.A(t, chunks).Length(4)

		var rebuilt []int
		var prev []int
		for i, chunk := range chunks {
			tokens := tok.Encode(chunk)
			gt.Number(t, len(tokens)).Greater(0)
			if i < len(chunks)-1 {
				gt.Value(t, len(tokens)).Equal(10)
			}
			if i == 0 {
				rebuilt = append(rebuilt, tokens...)
			} else {
				gt.Value(t, tokens[:3]).Equal(prev[len(prev)-3:])
				rebuilt = append(rebuilt, tokens[3:]...)
			}
			prev = tokens
		}
		gt.Value(t, rebuilt).Equal(tok.Encode(text))
	})

	t.Run("exact fit does not emit a redundant tail window", func(t *testing.T) {
		c, err := chunker.New(newWordTokenizer(), chunker.WithChunkSize(10), chunker.WithOverlap(3))
		gt.NoError(t, err).Required()
		gt.A(t, c.Chunk(makeText(17))).Length(2)
	})

	t.Run("windows splitting a character stay valid UTF-8", func(t *testing.T) {
		c, err := chunker.New(byteTokenizer{}, chunker.WithChunkSize(3), chunker.WithOverlap(1))
		gt.NoError(t, err).Required()

		chunks := c.Chunk("ação 🩺 血压 ±µ")
		gt.Number(t, len(chunks)).Greater(1)
		for _, chunk := range chunks {
			gt.Bool(t, utf8.ValidString(chunk)).True()
		}
		gt.Value(t, chunks[0]).Equal("aç")
		gt.Value(t, chunks[1]).Equal("ã")
	})

	t.Run("rechunking is deterministic", func(t *testing.T) {
		c, err := chunker.New(newWordTokenizer(), chunker.WithChunkSize(7), chunker.WithOverlap(2))
		gt.NoError(t, err).Required()
		text := makeText(40)
		gt.Value(t, c.Chunk(text)).Equal(c.Chunk(text))
	})
}

func TestWindows(t *testing.T) {
	c, err := chunker.New(newWordTokenizer(), chunker.WithChunkSize(500), chunker.WithOverlap(50))
	gt.NoError(t, err).Required()

	windows := c.Windows(1000)
	gt.Value(t, windows).Equal([][2]int{{0, 500}, {450, 950}, {900, 1000}})
	gt.A(t, c.Windows(0)).Length(0)
}

func TestTiktoken(t *testing.T) {
	if os.Getenv("TEST_TIKTOKEN") == "" {
		t.Skip("TEST_TIKTOKEN not set")
	}

	tok, err := chunker.NewTiktoken(chunker.DefaultEncoding)
	gt.NoError(t, err).Required()

	text := "O paciente apresenta hipertensão arterial sistêmica."
	gt.Value(t, tok.Decode(tok.Encode(text))).Equal(text)
	gt.Number(t, chunker.CountTokens(tok, text)).Greater(0)
}
