package usecase_test

import (
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mentorag/pkg/service/embedding"
	"github.com/secmon-lab/mentorag/pkg/usecase"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: goerr.Wrap(usecase.ErrMentorInactive, "ask"), want: usecase.MessageMentorInactive},
		{err: goerr.Wrap(usecase.ErrProfilePending, "ask"), want: usecase.MessageProfilePending},
		{err: goerr.Wrap(embedding.ErrEmbeddingUnavailable, "embed"), want: usecase.MessageEmbeddingUnavailable},
		{err: goerr.Wrap(usecase.ErrQueryTooShort, "search"), want: usecase.MessageQueryTooShort},
	}
	for _, tt := range tests {
		msg, ok := usecase.UserMessage(tt.err)
		gt.Bool(t, ok).True()
		gt.Value(t, msg).Equal(tt.want)
	}

	_, ok := usecase.UserMessage(goerr.New("boom"))
	gt.Bool(t, ok).False()
}
