package cli

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/cli/config"
	"github.com/secmon-lab/mentorag/pkg/utils/errutil"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const defaultEnvFile = ".env"

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var envFile string
	var closer func()

	// environment variables feed flag defaults, so the file is read before parsing
	if err := loadEnvFile(envFileArg(args)); err != nil {
		return err
	}

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "env-file",
			Usage:       "Load environment variables from a file before parsing flags (default .env when present)",
			Destination: &envFile,
		},
	}
	flags = append(flags, loggerCfg.Flags()...)

	app := &cli.Command{
		Name:    "mentorag",
		Usage:   "Answer questions in the voice of medical mentors from their own documents",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().LogAttrs(ctx, slog.LevelDebug, "Starting mentorag",
				slog.String("version", version),
				slog.String("env_file", envFile),
				slog.Any("logger", loggerCfg.LogAttrs()),
			)
			return logging.With(ctx, logging.Default()), nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdMentor(),
			cmdIngest(),
			cmdContent(),
			cmdAsk(),
			cmdSearch(),
			cmdConversations(),
			cmdMessages(),
			cmdProfile(),
			cmdServe(),
			cmdMigrate(),
			cmdValidate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		return errutil.Handle(ctx, err, "failed to run app")
	}

	return nil
}

// envFileArg finds --env-file in args without parsing the other flags
func envFileArg(args []string) string {
	for i, arg := range args {
		for _, name := range []string{"--env-file", "-env-file"} {
			if value, ok := strings.CutPrefix(arg, name+"="); ok {
				return value
			}
			if arg == name && i+1 < len(args) {
				return args[i+1]
			}
		}
	}
	return ""
}

// loadEnvFile loads path, or .env when path is empty and the file exists.
// Variables already set in the environment are kept.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		return goerr.Wrap(err, "failed to load env file", goerr.V("path", path))
	}
	return nil
}
