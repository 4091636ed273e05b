package cli

import (
	"context"

	"github.com/secmon-lab/mentorag/pkg/cli/config"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var dryRun bool

	flags := repoCfg.Flags()
	flags = append(flags, &cli.BoolFlag{
		Name:        "dry-run",
		Usage:       "Preview index changes without applying them",
		Destination: &dryRun,
	})

	return &cli.Command{
		Name:  "migrate",
		Usage: "Create the Firestore indexes mentorag queries need",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Migrate configuration",
				"repository", repoCfg.LogAttrs(),
				"dry_run", dryRun)
			return repoCfg.Migrate(ctx, dryRun)
		},
	}
}
