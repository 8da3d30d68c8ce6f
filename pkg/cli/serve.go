package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/collie-dev/collie/pkg/cli/config"
	controller "github.com/collie-dev/collie/pkg/controller/http"
	"github.com/collie-dev/collie/pkg/infra/llm"
	"github.com/collie-dev/collie/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		githubCfg config.GitHub
		llmCfg    config.LLM
		reviewCfg config.Review
		sentryCfg config.Sentry
	)

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, reviewCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting collie server",
				slog.String("addr", serverCfg.Addr),
				slog.String("model", llmCfg.Model),
			)

			if err := sentryCfg.Configure(); err != nil {
				return err
			}

			// External collaborators
			githubClient, err := githubCfg.NewClient(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to create GitHub client")
			}

			analyzer, err := llm.NewOpenAIAnalyzer(ctx, llmCfg.APIKey, llmCfg.Model)
			if err != nil {
				return goerr.Wrap(err, "failed to create analyzer")
			}

			// Review pipeline
			reviewUC := usecase.NewReview(githubClient, analyzer, usecase.Config{
				WebhookSecret:  githubCfg.WebhookSecret,
				PromptBudget:   int(reviewCfg.PromptBudget),
				MaxAttempts:    int(reviewCfg.MaxAttempts),
				InitialBackoff: reviewCfg.InitialBackoff,
				CallTimeout:    reviewCfg.CallTimeout,
			})

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				reviewUC,
				controller.WithAddr(serverCfg.Addr),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
