package embedding

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/m-mizutani/goerr/v2"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/secmon-lab/mentorag/pkg/domain/interfaces"
)

// DefaultOpenAIModel is the embedding model used when none is configured
const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAI calls the OpenAI embeddings API directly and retries rate-limited requests
type OpenAI struct {
	client          openai.Client
	model           string
	dimension       int
	initialInterval time.Duration
	maxElapsed      time.Duration
}

var _ interfaces.Embedder = &OpenAI{}

// OpenAIOption is a functional option for the OpenAI embedder
type OpenAIOption func(*OpenAI)

// WithOpenAIModel sets the embedding model
func WithOpenAIModel(model string) OpenAIOption {
	return func(o *OpenAI) {
		o.model = model
	}
}

// WithOpenAIDimension requests vectors of the given dimension
func WithOpenAIDimension(dim int) OpenAIOption {
	return func(o *OpenAI) {
		o.dimension = dim
	}
}

// WithRetry sets the backoff applied to rate-limited requests
func WithRetry(initial, maxElapsed time.Duration) OpenAIOption {
	return func(o *OpenAI) {
		o.initialInterval = initial
		o.maxElapsed = maxElapsed
	}
}

// NewOpenAI creates an OpenAI embedder. requestOpts are passed to the SDK client.
func NewOpenAI(apiKey string, opts []OpenAIOption, requestOpts ...option.RequestOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, goerr.New("OpenAI API key is required")
	}

	o := &OpenAI{
		model:           DefaultOpenAIModel,
		initialInterval: 500 * time.Millisecond,
		maxElapsed:      30 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	// retries are handled here so that only rate limits are retried
	requestOpts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, requestOpts...)
	o.client = openai.NewClient(requestOpts...)

	return o, nil
}

// Embed returns the vector of text or an error wrapping ErrEmbeddingUnavailable
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	var embedding []float32

	operation := func() error {
		params := openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: []string{text},
			},
			Model: openai.EmbeddingModel(o.model),
		}
		if o.dimension > 0 {
			params.Dimensions = openai.Int(int64(o.dimension))
		}

		resp, err := o.client.Embeddings.New(ctx, params)
		if err != nil {
			if isRateLimitError(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return backoff.Permanent(goerr.New("no embedding returned"))
		}
		if err := checkFinite(resp.Data[0].Embedding); err != nil {
			return backoff.Permanent(err)
		}
		embedding = toFloat32(resp.Data[0].Embedding)
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.initialInterval
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = o.maxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, unavailable(err, "failed to generate embedding with OpenAI", goerr.V("model", o.model))
	}

	return embedding, nil
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
