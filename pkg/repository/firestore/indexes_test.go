package firestore_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mentorag/pkg/repository/firestore"
)

func TestIndexes(t *testing.T) {
	cfg := firestore.Indexes("test_")
	gt.A(t, cfg.Collections).Length(3).Required()

	names := make([]string, len(cfg.Collections))
	for i, c := range cfg.Collections {
		names[i] = c.Name
		gt.A(t, c.Indexes).Length(1)
	}
	gt.Value(t, names).Equal([]string{"test_contents", "test_chunks", "test_conversations"})
}
