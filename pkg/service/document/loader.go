// Package document reads plain-text documents for ingestion from local files
// or Cloud Storage objects.
package document

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/utils/safe"
)

// DefaultMaxBytes bounds the size of a document
const DefaultMaxBytes = 10 << 20

var (
	ErrNotText     = errors.New("document is not UTF-8 text")
	ErrTooLarge    = errors.New("document is too large")
	ErrInvalidURI  = errors.New("invalid document URI")
	ErrNoGCSClient = errors.New("cloud storage is not configured")
)

// Document is the text of a file and the title derived from its name
type Document struct {
	Title string
	Text  string
}

// ObjectReader opens objects of a bucket
type ObjectReader interface {
	NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

// GCS reads objects with the Cloud Storage client
type GCS struct {
	client *storage.Client
}

// NewGCS creates a reader using application default credentials
func NewGCS(ctx context.Context) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create cloud storage client")
	}
	return &GCS{client: client}, nil
}

func (g *GCS) NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	r, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open object",
			goerr.V("bucket", bucket),
			goerr.V("object", object))
	}
	return r, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}

// Loader reads documents by URI: gs://bucket/object or a local path
type Loader struct {
	objects  ObjectReader
	maxBytes int64
}

type Option func(*Loader)

// WithObjectReader enables gs:// URIs
func WithObjectReader(r ObjectReader) Option {
	return func(l *Loader) {
		l.objects = r
	}
}

func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		l.maxBytes = n
	}
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ParseGCSURI splits gs://bucket/object. ok is false for any other URI.
func ParseGCSURI(uri string) (bucket, object string, ok bool) {
	rest, found := strings.CutPrefix(uri, "gs://")
	if !found {
		return "", "", false
	}
	bucket, object, found = strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}

// Load reads the document at uri
func (l *Loader) Load(ctx context.Context, uri string) (*Document, error) {
	if strings.HasPrefix(uri, "gs://") {
		bucket, object, ok := ParseGCSURI(uri)
		if !ok {
			return nil, goerr.Wrap(ErrInvalidURI, "expected gs://bucket/object", goerr.V("uri", uri))
		}
		if l.objects == nil {
			return nil, goerr.Wrap(ErrNoGCSClient, "cannot read object", goerr.V("uri", uri))
		}

		r, err := l.objects.NewReader(ctx, bucket, object)
		if err != nil {
			return nil, err
		}
		defer safe.Close(ctx, r)

		return l.read(r, uri, titleOf(path.Base(object)))
	}

	// #nosec G304 - path is provided by CLI argument
	f, err := os.Open(uri)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open document", goerr.V("path", uri))
	}
	defer safe.Close(ctx, f)

	return l.read(f, uri, titleOf(filepath.Base(uri)))
}

func (l *Loader) read(r io.Reader, uri, title string) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read document", goerr.V("uri", uri))
	}
	if int64(len(data)) > l.maxBytes {
		return nil, goerr.Wrap(ErrTooLarge, "document exceeds the size limit",
			goerr.V("uri", uri),
			goerr.V("max_bytes", l.maxBytes))
	}
	if !utf8.Valid(data) {
		return nil, goerr.Wrap(ErrNotText, "document must be UTF-8 text", goerr.V("uri", uri))
	}

	return &Document{Title: title, Text: string(data)}, nil
}

// titleOf drops the extension of a file name
func titleOf(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}
