package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/mentorag/pkg/controller/http"
	"github.com/secmon-lab/mentorag/pkg/service/document"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr, apiToken string
	var maxBytes int64
	var requestTimeout time.Duration

	return dataCommand(&cli.Command{
		Name:  "serve",
		Usage: "Serve the mentor API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "HTTP server address",
				Value:       ":8080",
				Sources:     cli.EnvVars("MENTORAG_ADDR"),
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "api-token",
				Usage:       "Bearer token required on /api requests; empty disables the check",
				Sources:     cli.EnvVars("MENTORAG_API_TOKEN"),
				Destination: &apiToken,
			},
			&cli.Int64Flag{
				Name:        "max-bytes",
				Usage:       "Largest document accepted for ingestion",
				Value:       document.DefaultMaxBytes,
				Destination: &maxBytes,
			},
			&cli.DurationFlag{
				Name:        "request-timeout",
				Usage:       "Time limit of one API request",
				Value:       2 * time.Minute,
				Sources:     cli.EnvVars("MENTORAG_REQUEST_TIMEOUT"),
				Destination: &requestTimeout,
			},
		},
	}, needEmbedding|needChunker|needLLM, func(ctx context.Context, c *cli.Command, rt *runtime) error {
		handler := httpctrl.New(rt.uc,
			httpctrl.WithAPIToken(apiToken),
			httpctrl.WithMaxDocumentBytes(maxBytes),
			httpctrl.WithRequestTimeout(requestTimeout),
		)
		server := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 30 * time.Second,
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		errCh := make(chan error, 1)
		go func() {
			logging.Default().Info("Starting HTTP server", "addr", addr, "auth", apiToken != "")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- goerr.Wrap(err, "failed to start server")
			}
		}()

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			logging.Default().Info("Received shutdown signal", "signal", sig)
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return goerr.Wrap(err, "failed to shutdown server gracefully")
		}

		// pending profile syntheses finish in rt.Close
		logging.Default().Info("Server shutdown completed")
		return nil
	})
}
