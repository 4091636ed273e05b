package anonymizer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/mentorag/pkg/domain/interfaces"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
)

// LLMRecognizer asks a language model for the entities in a text and locates
// every occurrence of them on the original offsets
type LLMRecognizer struct {
	client gollem.LLMClient
}

var _ interfaces.EntityRecognizer = &LLMRecognizer{}

// NewLLMRecognizer creates a recognizer backed by client
func NewLLMRecognizer(client gollem.LLMClient) (*LLMRecognizer, error) {
	if client == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &LLMRecognizer{client: client}, nil
}

type llmEntity struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type llmEntityResponse struct {
	Entities []llmEntity `json:"entities"`
}

const recognizerPrompt = `You detect personal data in Portuguese medical conversations.
List every person name (PER), location such as a city, state, street or neighborhood (LOC), and organization such as a hospital, clinic or company (ORG).
Copy each entity exactly as written in the text. Do not list medical terms, diseases, drugs, or generic words.
Do not list bracketed placeholders such as [CPF] or [PACIENTE_1].
If there are no entities, return an empty array.`

// Recognize returns the entities the model found
func (r *LLMRecognizer) Recognize(ctx context.Context, text string) ([]model.Entity, error) {
	session, err := r.client.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(entitySchema()),
		gollem.WithSessionSystemPrompt(recognizerPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(text))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to recognize entities")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("empty entity response")
	}

	// the response lists the very names being hidden, so only its size is recorded
	raw := strings.Join(resp.Texts, "")
	var parsed llmEntityResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse entity response", goerr.V("response_bytes", len(raw)))
	}

	var entities []model.Entity
	for _, e := range parsed.Entities {
		category := types.EntityCategory(strings.ToUpper(strings.TrimSpace(e.Category)))
		needle := strings.TrimSpace(e.Text)
		if !category.IsValid() || needle == "" {
			continue
		}
		entities = append(entities, locate(text, needle, category)...)
	}
	return entities, nil
}

// locate finds every whole-word occurrence of needle in text
func locate(text, needle string, category types.EntityCategory) []model.Entity {
	var entities []model.Entity
	for offset := 0; offset < len(text); {
		idx := strings.Index(text[offset:], needle)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(needle)
		if isWordBoundary(text, start, end) {
			entities = append(entities, newEntity(text, start, end, category))
		}
		offset = end
	}
	return entities
}

func entitySchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "EntityRecognitionResponse",
		Description: "Named entities that identify a person, place or organization",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"entities": {
				Type:        gollem.TypeArray,
				Description: "Entities found in the text",
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"text": {
							Type:        gollem.TypeString,
							Description: "The entity exactly as written in the text",
							Required:    true,
						},
						"category": {
							Type:        gollem.TypeString,
							Description: "PER, LOC or ORG",
							Enum:        []string{"PER", "LOC", "ORG"},
							Required:    true,
						},
					},
				},
				Required: true,
			},
		},
	}
}
