package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdContent() *cli.Command {
	return &cli.Command{
		Name:  "content",
		Usage: "Manage a mentor's documents",
		Commands: []*cli.Command{
			cmdContentList(),
			cmdContentDelete(),
		},
	}
}

func cmdContentList() *cli.Command {
	var mentorID string

	return dataCommand(&cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List a mentor's documents, newest first",
		Flags:   []cli.Flag{mentorFlag(&mentorID)},
	}, 0, func(ctx context.Context, c *cli.Command, rt *runtime) error {
		contents, err := rt.uc.Ingest.Contents(ctx, model.MentorID(mentorID))
		if err != nil {
			return goerr.Wrap(err, "failed to list contents")
		}

		p := newPrinter(c.Root().Writer)
		for _, content := range contents {
			p.Printf("%s  %s  %s %s\n",
				content.ID,
				p.title(content.Title),
				content.Status,
				p.dim(content.CreatedAt.Format("2006-01-02 15:04")))
		}
		return nil
	})
}

func cmdContentDelete() *cli.Command {
	var mentorID string

	return dataCommand(&cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete documents and their chunks",
		ArgsUsage: "CONTENT_ID...",
		Flags:     []cli.Flag{mentorFlag(&mentorID)},
	}, 0, func(ctx context.Context, c *cli.Command, rt *runtime) error {
		args := c.Args().Slice()
		p := newPrinter(c.Root().Writer)

		switch len(args) {
		case 0:
			return goerr.New("at least one content ID is required")

		case 1:
			chunks, err := rt.uc.Ingest.DeleteContent(ctx, model.MentorID(mentorID), model.ContentID(args[0]))
			if err != nil {
				return goerr.Wrap(err, "failed to delete content")
			}
			p.Printf("deleted 1 document and %d chunks\n", chunks)

		default:
			ids := make([]model.ContentID, len(args))
			for i, a := range args {
				ids[i] = model.ContentID(a)
			}
			contents, chunks, err := rt.uc.Ingest.DeleteContents(ctx, model.MentorID(mentorID), ids)
			if err != nil {
				return goerr.Wrap(err, "failed to delete contents")
			}
			p.Printf("deleted %d documents and %d chunks\n", contents, chunks)
			if skipped := len(ids) - contents; skipped > 0 {
				p.Warn("skipped documents that do not exist or belong to another mentor")
			}
		}
		return nil
	})
}
