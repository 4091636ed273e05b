package generation

import (
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/service/chunker"
)

var (
	BuildContext      = buildContext
	BuildSystemPrompt = buildSystemPrompt
	BuildUserPrompt   = buildUserPrompt
)

func FitBudget(tok chunker.Tokenizer, budget int, chunks []*model.Chunk) []*model.Chunk {
	c := &client{tokenizer: tok, tokenBudget: budget}
	return c.fitBudget(chunks)
}
