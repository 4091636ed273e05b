package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/cli/config"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.App

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the tuning file",
		Flags:   appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			tuning, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logging.Default().Info("Configuration validation passed",
				"chunk_size", tuning.Chunking.Size,
				"chunk_overlap", tuning.Chunking.Overlap,
				"chat_top_k", tuning.Chat.TopK,
				"chat_min_similarity", tuning.Chat.MinSimilarity,
				"search_top_k", tuning.Search.TopK,
				"search_min_similarity", tuning.Search.MinSimilarity,
				"anonymizer", tuning.Anonymizer.Strategy,
				"extra_traits", len(tuning.Profile.Traits),
			)
			return nil
		},
	}
}
