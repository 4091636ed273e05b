// Package testutil provides test doubles shared by service and usecase tests.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/m-mizutani/gollem"
)

// MockSession is a gollem.Session returning canned responses
type MockSession struct {
	GenerateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *MockSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.GenerateContentFn != nil {
		return s.GenerateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{"mock response"}}, nil
}

func (s *MockSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *MockSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *MockSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *MockSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// MockLLMClient is a gollem.LLMClient whose behavior is set per test.
// It counts sessions so tests can assert that a provider was never called.
type MockLLMClient struct {
	NewSessionFn        func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
	GenerateEmbeddingFn func(ctx context.Context, dimension int, input []string) ([][]float64, error)

	mu       sync.Mutex
	sessions int
}

func (c *MockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	c.mu.Lock()
	c.sessions++
	c.mu.Unlock()

	if c.NewSessionFn != nil {
		return c.NewSessionFn(ctx, options...)
	}
	return &MockSession{}, nil
}

func (c *MockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	if c.GenerateEmbeddingFn != nil {
		return c.GenerateEmbeddingFn(ctx, dimension, input)
	}
	result := make([][]float64, len(input))
	for i := range input {
		vec := make([]float64, dimension)
		for j := range vec {
			vec[j] = 0.1
		}
		result[i] = vec
	}
	return result, nil
}

// Sessions returns how many sessions were opened
func (c *MockLLMClient) Sessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions
}

// TextClient returns a client whose sessions answer with text
func TextClient(text string) *MockLLMClient {
	return &MockLLMClient{
		NewSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &MockSession{
				GenerateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{text}}, nil
				},
			}, nil
		},
	}
}

// FailingClient returns a client whose sessions fail with err
func FailingClient(err error) *MockLLMClient {
	return &MockLLMClient{
		NewSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &MockSession{
				GenerateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return nil, err
				},
			}, nil
		},
		GenerateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
			return nil, err
		},
	}
}

// InputText concatenates the text inputs of a GenerateContent call
func InputText(input ...gollem.Input) string {
	var sb strings.Builder
	for _, in := range input {
		if t, ok := in.(gollem.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
