package anonymizer

import (
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
)

// ConversationCounts returns the entity counters of a conversation, or an
// empty map when it has none
func (a *Anonymizer) ConversationCounts(conversationID model.ConversationID) map[types.EntityCategory]int {
	if a.counters == nil {
		return map[types.EntityCategory]int{}
	}
	c, ok := a.counters.Peek(conversationID)
	if !ok {
		return map[types.EntityCategory]int{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make(map[types.EntityCategory]int, len(c.counts))
	for k, v := range c.counts {
		result[k] = v
	}
	return result
}
