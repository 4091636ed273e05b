package chunker

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
)

// ErrInvalidWindow is returned when the window configuration cannot make progress
var ErrInvalidWindow = goerr.New("invalid chunk window")

// Chunker splits text into overlapping fixed-size token windows
type Chunker struct {
	tokenizer Tokenizer
	size      int
	overlap   int
}

// Option is a functional option for Chunker configuration
type Option func(*Chunker)

// WithChunkSize sets the window size in tokens
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.size = size
	}
}

// WithOverlap sets the number of tokens shared by consecutive windows
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a Chunker. The overlap must be smaller than the window.
func New(tokenizer Tokenizer, opts ...Option) (*Chunker, error) {
	if tokenizer == nil {
		return nil, goerr.New("tokenizer is required")
	}

	c := &Chunker{
		tokenizer: tokenizer,
		size:      DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.size <= 0 || c.overlap < 0 || c.overlap >= c.size {
		return nil, goerr.Wrap(ErrInvalidWindow, "overlap must be in [0, size)",
			goerr.V("size", c.size),
			goerr.V("overlap", c.overlap))
	}

	return c, nil
}

// Size returns the window size in tokens
func (c *Chunker) Size() int { return c.size }

// Overlap returns the overlap in tokens
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk returns the decoded token windows of text. Every window starts
// size-overlap tokens after the previous one; the last window may be shorter.
// Windowing stops once a window reaches the end of the token stream.
// A window boundary can fall inside a multi-byte character; the partial bytes
// are dropped from that window so every chunk is valid UTF-8. The neighbouring
// window still carries the whole character when the overlap covers it.
func (c *Chunker) Chunk(text string) []string {
	tokens := c.tokenizer.Encode(text)
	if len(tokens) == 0 {
		return []string{}
	}

	windows := c.Windows(len(tokens))
	chunks := make([]string, 0, len(windows))
	for _, w := range windows {
		chunks = append(chunks, strings.ToValidUTF8(c.tokenizer.Decode(tokens[w[0]:w[1]]), ""))
	}

	return chunks
}

// Windows returns the token ranges Chunk would decode, as [start, end) pairs
func (c *Chunker) Windows(tokenCount int) [][2]int {
	if tokenCount <= 0 {
		return nil
	}

	step := c.size - c.overlap
	var windows [][2]int
	for start := 0; ; start += step {
		end := min(start+c.size, tokenCount)
		windows = append(windows, [2]int{start, end})
		if end == tokenCount {
			break
		}
	}
	return windows
}
