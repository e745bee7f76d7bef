package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/dmleblanc/gitrelay/pkg/cli/config"
	controller "github.com/dmleblanc/gitrelay/pkg/controller/http"
	"github.com/dmleblanc/gitrelay/pkg/infra/archive"
	fsinfra "github.com/dmleblanc/gitrelay/pkg/infra/firestore"
	ghinfra "github.com/dmleblanc/gitrelay/pkg/infra/github"
	"github.com/dmleblanc/gitrelay/pkg/infra/secrets"
	"github.com/dmleblanc/gitrelay/pkg/usecase"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		githubCfg    config.GitHub
		firestoreCfg config.Firestore
		archiveCfg   config.Archive
		sentryCfg    config.Sentry
	)

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)
	flags = append(flags, archiveCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting gitrelay server",
				slog.String("addr", serverCfg.Addr),
			)

			if err := sentryCfg.Configure(); err != nil {
				return err
			}
			defer sentry.Flush(2 * time.Second)

			policy, err := config.LoadPolicy(serverCfg.PolicyPath)
			if err != nil {
				return err
			}
			corsOrigin := serverCfg.CORSOrigin
			if policy.CORSOrigin != "" {
				corsOrigin = policy.CORSOrigin
			}

			secretStore, err := secrets.NewSecretManager(ctx, githubCfg.CredentialsSecret)
			if err != nil {
				return goerr.Wrap(err, "failed to create secret store")
			}
			defer secretStore.Close()

			commitStore, err := fsinfra.New(ctx, firestoreCfg.ProjectID, firestoreCfg.DatabaseID, firestoreCfg.Collection)
			if err != nil {
				return goerr.Wrap(err, "failed to create commit store")
			}
			defer commitStore.Close()

			githubClient := ghinfra.New(secretStore, ghinfra.WithAPIBase(githubCfg.APIBase))

			// Create use cases
			ingestOpts := []usecase.IngestOption{}
			if archiveCfg.Bucket != "" {
				payloadArchive, err := archive.NewGCS(ctx, archiveCfg.Bucket)
				if err != nil {
					return goerr.Wrap(err, "failed to create payload archive")
				}
				ingestOpts = append(ingestOpts, usecase.WithArchive(payloadArchive))
			}
			ingestUC := usecase.NewIngest(commitStore, ingestOpts...)
			relayUC := usecase.NewRelay(commitStore, githubClient, githubClient)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				ingestUC,
				relayUC,
				secretStore,
				controller.WithAddr(serverCfg.Addr),
				controller.WithCORSOrigin(corsOrigin),
				controller.WithDefaultRepos(policy.DefaultRepos),
				controller.WithCacheMaxAges(policy.ContributionsMaxAge, policy.ActivityMaxAge),
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
