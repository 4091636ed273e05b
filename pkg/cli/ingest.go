package cli

import (
	"context"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/service/document"
	"github.com/secmon-lab/mentorag/pkg/usecase"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdIngest() *cli.Command {
	var mentorID, title string
	var maxBytes int64
	var noProfile bool

	flags := []cli.Flag{
		mentorFlag(&mentorID),
		&cli.StringFlag{
			Name:        "title",
			Usage:       "Document title; defaults to the file name",
			Destination: &title,
		},
		&cli.Int64Flag{
			Name:        "max-bytes",
			Usage:       "Largest document accepted",
			Value:       document.DefaultMaxBytes,
			Destination: &maxBytes,
		},
		&cli.BoolFlag{
			Name:        "no-profile",
			Usage:       "Skip profile synthesis; no LLM provider is needed",
			Destination: &noProfile,
		},
	}

	needs := func() capability {
		if noProfile {
			return needEmbedding | needChunker
		}
		return needEmbedding | needChunker | needLLM
	}

	return dynamicDataCommand(&cli.Command{
		Name:      "ingest",
		Aliases:   []string{"i"},
		Usage:     "Add documents to a mentor's corpus and synthesize a profile for review",
		ArgsUsage: "PATH|gs://BUCKET/OBJECT...",
		Flags:     flags,
	}, needs, func(ctx context.Context, c *cli.Command, rt *runtime) error {
		return runIngest(ctx, c, rt, model.MentorID(mentorID), title, maxBytes, noProfile)
	})
}

func runIngest(ctx context.Context, c *cli.Command, rt *runtime, mentorID model.MentorID, title string, maxBytes int64, noProfile bool) error {
	uris := c.Args().Slice()
	if len(uris) == 0 {
		return goerr.New("at least one document path is required")
	}
	if title != "" && len(uris) > 1 {
		return goerr.New("--title can only be used with a single document")
	}

	opts := []document.Option{document.WithMaxBytes(maxBytes)}
	if slices.ContainsFunc(uris, func(uri string) bool { return strings.HasPrefix(uri, "gs://") }) {
		gcs, err := document.NewGCS(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := gcs.Close(); err != nil {
				logging.Default().Error("failed to close cloud storage client", "error", err.Error())
			}
		}()
		opts = append(opts, document.WithObjectReader(gcs))
	}
	loader := document.NewLoader(opts...)

	p := newPrinter(c.Root().Writer)
	for _, uri := range uris {
		doc, err := loader.Load(ctx, uri)
		if err != nil {
			return goerr.Wrap(err, "failed to load document", goerr.V("uri", uri))
		}
		if title != "" {
			doc.Title = title
		}

		content, err := rt.uc.Ingest.Ingest(ctx, usecase.IngestInput{
			MentorID: mentorID,
			Title:    doc.Title,
			Text:     doc.Text,
		})
		if err != nil {
			return p.report(goerr.Wrap(err, "failed to ingest document", goerr.V("uri", uri)))
		}

		p.Printf("%s %s %d chunks\n", p.title(content.Title), p.dim(string(content.ID)), content.ChunkCount)
	}

	if !noProfile {
		p.Printf("%s\n", p.dim("waiting for profile synthesis; review it with 'mentorag profile show'"))
	}
	return nil
}
