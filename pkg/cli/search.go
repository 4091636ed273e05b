package cli

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdSearch() *cli.Command {
	return dataCommand(&cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "Find which mentors have written about a topic",
		ArgsUsage: "QUERY...",
	}, needEmbedding, func(ctx context.Context, c *cli.Command, rt *runtime) error {
		p := newPrinter(c.Root().Writer)

		result, err := rt.uc.Search.Universal(ctx, strings.Join(c.Args().Slice(), " "))
		if err != nil {
			return p.report(goerr.Wrap(err, "search failed"))
		}

		if len(result.Mentors) == 0 {
			p.Warn("no mentor has written about this topic")
			return nil
		}

		for _, m := range result.Mentors {
			p.Printf("%s %s %s\n", p.title(m.Name), p.dim(m.Specialty), p.label(formatScore(m.BestScore)))
			for _, e := range m.Excerpts {
				p.Printf("  %s %s\n", p.label(e.ContentTitle), p.dim(formatScore(e.Score)))
				p.Printf("    %s\n", e.Text)
			}
			p.Printf("\n")
		}
		return nil
	})
}
