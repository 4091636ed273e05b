package document_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mentorag/pkg/service/document"
)

type fakeObjects struct {
	objects map[string]string
	opened  []string
}

func (f *fakeObjects) NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	key := bucket + "/" + object
	f.opened = append(f.opened, key)
	body, ok := f.objects[key]
	if !ok {
		return nil, goerr.New("object not found", goerr.V("key", key))
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri    string
		bucket string
		object string
		ok     bool
	}{
		{uri: "gs://docs/cardio/hipertensao.txt", bucket: "docs", object: "cardio/hipertensao.txt", ok: true},
		{uri: "gs://docs/", ok: false},
		{uri: "gs://docs", ok: false},
		{uri: "s3://docs/a.txt", ok: false},
		{uri: "/tmp/a.txt", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, ok := document.ParseGCSURI(tt.uri)
			gt.Value(t, ok).Equal(tt.ok)
			gt.Value(t, bucket).Equal(tt.bucket)
			gt.Value(t, object).Equal(tt.object)
		})
	}
}

func TestLoader(t *testing.T) {
	ctx := context.Background()

	t.Run("local file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "Hipertensão arterial.txt")
		gt.NoError(t, os.WriteFile(path, []byte("A pressão deve ser medida em repouso."), 0600)).Required()

		doc, err := document.NewLoader().Load(ctx, path)
		gt.NoError(t, err).Required()
		gt.Value(t, doc.Title).Equal("Hipertensão arterial")
		gt.Value(t, doc.Text).Equal("A pressão deve ser medida em repouso.")
	})

	t.Run("cloud storage object", func(t *testing.T) {
		objects := &fakeObjects{objects: map[string]string{"docs/cardio/asma.md": "Asma é uma doença inflamatória."}}
		doc, err := document.NewLoader(document.WithObjectReader(objects)).Load(ctx, "gs://docs/cardio/asma.md")
		gt.NoError(t, err).Required()
		gt.Value(t, doc.Title).Equal("asma")
		gt.Value(t, doc.Text).Equal("Asma é uma doença inflamatória.")
		gt.A(t, objects.opened).Length(1)
	})

	t.Run("cloud storage not configured", func(t *testing.T) {
		_, err := document.NewLoader().Load(ctx, "gs://docs/a.txt")
		gt.Error(t, err).Is(document.ErrNoGCSClient)
	})

	t.Run("malformed gs uri", func(t *testing.T) {
		_, err := document.NewLoader(document.WithObjectReader(&fakeObjects{})).Load(ctx, "gs://docs")
		gt.Error(t, err).Is(document.ErrInvalidURI)
	})

	t.Run("too large", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "big.txt")
		gt.NoError(t, os.WriteFile(path, []byte(strings.Repeat("a", 11)), 0600)).Required()

		_, err := document.NewLoader(document.WithMaxBytes(10)).Load(ctx, path)
		gt.Error(t, err).Is(document.ErrTooLarge)
	})

	t.Run("binary content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scan.pdf")
		gt.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x81}, 0600)).Required()

		_, err := document.NewLoader().Load(ctx, path)
		gt.Error(t, err).Is(document.ErrNotText)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := document.NewLoader().Load(ctx, filepath.Join(t.TempDir(), "none.txt"))
		gt.Error(t, err)
	})
}
