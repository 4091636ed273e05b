package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdMentor() *cli.Command {
	return &cli.Command{
		Name:  "mentor",
		Usage: "Manage mentors",
		Commands: []*cli.Command{
			cmdMentorCreate(),
			cmdMentorList(),
			cmdMentorStats(),
		},
	}
}

func cmdMentorCreate() *cli.Command {
	var name, specialty string

	return dataCommand(&cli.Command{
		Name:  "create",
		Usage: "Create a mentor; its bot stays inactive until a profile is approved",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Usage:       "Mentor display name",
				Required:    true,
				Destination: &name,
			},
			&cli.StringFlag{
				Name:        "specialty",
				Usage:       "Medical specialty",
				Destination: &specialty,
			},
		},
	}, 0, func(ctx context.Context, c *cli.Command, rt *runtime) error {
		mentor, err := rt.uc.Mentor.Create(ctx, name, specialty)
		if err != nil {
			return goerr.Wrap(err, "failed to create mentor")
		}

		p := newPrinter(c.Root().Writer)
		p.Field("ID", mentor.ID)
		p.Field("Name", mentor.Name)
		p.Field("Status", mentor.ProfileStatus)
		return nil
	})
}

func cmdMentorList() *cli.Command {
	return dataCommand(&cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List mentors",
	}, 0, func(ctx context.Context, c *cli.Command, rt *runtime) error {
		mentors, err := rt.uc.Mentor.List(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to list mentors")
		}

		p := newPrinter(c.Root().Writer)
		for _, m := range mentors {
			p.Printf("%s  %s %s  %s\n", m.ID, p.title(m.Name), p.dim(m.Specialty), m.ProfileStatus)
		}
		return nil
	})
}

func cmdMentorStats() *cli.Command {
	var mentorID string

	return dataCommand(&cli.Command{
		Name:  "stats",
		Usage: "Show how much a mentor has ingested and answered",
		Flags: []cli.Flag{mentorFlag(&mentorID)},
	}, 0, func(ctx context.Context, c *cli.Command, rt *runtime) error {
		stats, err := rt.uc.Mentor.Stats(ctx, model.MentorID(mentorID))
		if err != nil {
			return goerr.Wrap(err, "failed to get mentor stats")
		}

		p := newPrinter(c.Root().Writer)
		p.Field("Contents", stats.Contents)
		p.Field("Processed", stats.ProcessedContents)
		p.Field("Chunks", stats.Chunks)
		p.Field("Conversations", stats.Conversations)
		p.Field("Answers", stats.Answers)
		return nil
	})
}
