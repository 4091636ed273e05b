package anonymizer_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/service/anonymizer"
	"github.com/secmon-lab/mentorag/pkg/utils/testutil"
)

func TestLLMRecognizer(t *testing.T) {
	ctx := context.Background()

	t.Run("locates every occurrence", func(t *testing.T) {
		client := testutil.TextClient(`{"entities":[{"text":"Lúcia","category":"per"},{"text":"Itu","category":"LOC"},{"text":"febre","category":"MISC"}]}`)
		r, err := anonymizer.NewLLMRecognizer(client)
		gt.NoError(t, err).Required()

		text := "Lúcia mora em Itu. Lúcia tem febre. Ituverava não."
		entities, err := r.Recognize(ctx, text)
		gt.NoError(t, err).Required()
		gt.A(t, entities).Length(3)
		for _, e := range entities {
			gt.Value(t, text[e.Span.Start:e.Span.End]).Equal(e.Text)
		}
		gt.Value(t, entities[0].Category).Equal(types.EntityPerson)
		gt.Value(t, entities[2].Text).Equal("Itu")
	})

	t.Run("drives the ner strategy", func(t *testing.T) {
		client := testutil.TextClient(`{"entities":[{"text":"Itu","category":"LOC"}]}`)
		r, err := anonymizer.NewLLMRecognizer(client)
		gt.NoError(t, err).Required()

		a, err := anonymizer.New(types.AnonymizerNER, anonymizer.WithRecognizer(r))
		gt.NoError(t, err).Required()
		res := a.Anonymize(ctx, "moro em Itu desde 01/02/2020", "conv-9")
		gt.Value(t, res.AnonymizedText).Equal("moro em [LOCAL_1] desde [DATA]")
	})

	t.Run("malformed response is an error", func(t *testing.T) {
		r, err := anonymizer.NewLLMRecognizer(testutil.TextClient("not json"))
		gt.NoError(t, err).Required()
		_, err = r.Recognize(ctx, "texto")
		gt.Error(t, err)
	})

	t.Run("parse error does not carry recognized names", func(t *testing.T) {
		r, err := anonymizer.NewLLMRecognizer(testutil.TextClient(`{"entities":[{"text":"Lúcia Prado","category":"PER"}`))
		gt.NoError(t, err).Required()

		_, err = r.Recognize(ctx, "Lúcia Prado mora em Itu.")
		gt.Error(t, err).Required()
		gt.Bool(t, strings.Contains(err.Error(), "Lúcia")).False()
		gt.Bool(t, strings.Contains(fmt.Sprint(goerr.Values(err)), "Lúcia")).False()
	})

	t.Run("provider failure is an error", func(t *testing.T) {
		r, err := anonymizer.NewLLMRecognizer(testutil.FailingClient(errors.New("down")))
		gt.NoError(t, err).Required()
		_, err = r.Recognize(ctx, "texto")
		gt.Error(t, err)
	})

	t.Run("session options request JSON", func(t *testing.T) {
		var opts int
		client := &testutil.MockLLMClient{
			NewSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				opts = len(options)
				return &testutil.MockSession{
					GenerateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return &gollem.Response{Texts: []string{`{"entities":[]}`}}, nil
					},
				}, nil
			},
		}
		r, err := anonymizer.NewLLMRecognizer(client)
		gt.NoError(t, err).Required()
		entities, err := r.Recognize(ctx, "sem nomes")
		gt.NoError(t, err)
		gt.A(t, entities).Length(0)
		gt.Value(t, opts).Equal(3)
	})

	_, err := anonymizer.NewLLMRecognizer(nil)
	gt.Error(t, err)
}
