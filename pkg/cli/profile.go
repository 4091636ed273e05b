package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdProfile() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Review a mentor's style profile",
		Commands: []*cli.Command{
			cmdProfileAction("show", "Show the approved and the pending profile", (*runtime).showProfile),
			cmdProfileAction("approve", "Make the pending profile the one the bot answers with", (*runtime).approveProfile),
			cmdProfileAction("reject", "Discard the pending profile", (*runtime).rejectProfile),
		},
	}
}

func cmdProfileAction(name, usage string, action func(*runtime, context.Context, model.MentorID) (*model.Mentor, error)) *cli.Command {
	var mentorID string

	return dataCommand(&cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{mentorFlag(&mentorID)},
	}, 0, func(ctx context.Context, c *cli.Command, rt *runtime) error {
		mentor, err := action(rt, ctx, model.MentorID(mentorID))
		if err != nil {
			return goerr.Wrap(err, "failed to "+name+" profile")
		}

		p := newPrinter(c.Root().Writer)
		p.Field("Mentor", mentor.Name)
		p.Field("Status", mentor.ProfileStatus)
		p.Profile("Active", mentor.ActiveProfile)
		p.Profile("Pending", mentor.PendingProfile)
		return nil
	})
}

func (rt *runtime) showProfile(ctx context.Context, id model.MentorID) (*model.Mentor, error) {
	return rt.uc.Profile.Show(ctx, id)
}

func (rt *runtime) approveProfile(ctx context.Context, id model.MentorID) (*model.Mentor, error) {
	return rt.uc.Profile.Approve(ctx, id)
}

func (rt *runtime) rejectProfile(ctx context.Context, id model.MentorID) (*model.Mentor, error) {
	return rt.uc.Profile.Reject(ctx, id)
}
