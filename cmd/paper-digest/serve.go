// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/acquire"
	"github.com/pdiddy/paper-digest/internal/artifact"
	"github.com/pdiddy/paper-digest/internal/janitor"
	"github.com/pdiddy/paper-digest/internal/pipeline"
	"github.com/pdiddy/paper-digest/internal/search"
	"github.com/pdiddy/paper-digest/internal/server"
)

const drainTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background workers",
	Long: `Serve starts the HTTP API. Submitted papers are queued and processed by a
pool of workers; clients poll /tasks/{id} until the task completes and then
fetch the summary and its audio. A scheduled janitor removes uploaded and
downloaded PDFs after the retention period.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	serveCmd.Flags().Int("workers", 0, "number of background workers (default 4)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.workers", serveCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, arts, closeStores, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	p, err := newPipeline(st, arts)
	if err != nil {
		return err
	}
	d := pipeline.NewDispatcher(context.Background(), p, st, cfg.Server.Workers, cfg.Server.QueueSize, logger)

	papers, err := artifact.NewLocal(cfg.Acquisition.PapersDir)
	if err != nil {
		return err
	}
	j := janitor.New(ctx, []janitor.Target{
		{Store: arts, Prefix: artifact.UploadsPrefix},
		{Store: papers, Prefix: acquire.RawDir + "/"},
		{Store: papers, Prefix: acquire.MetadataDir + "/"},
	}, cfg.Server.UploadRetention, logger)
	if err := j.Start(cfg.Server.JanitorSpec); err != nil {
		return err
	}
	defer j.Stop()

	srv := server.New(server.Config{
		Tasks:          d,
		Searcher:       search.NewClient(nil, cfg.Search),
		Store:          st,
		Artifacts:      arts,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Logger:         logger,
	})
	runErr := srv.Run(ctx, cfg.Server.Addr)

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := d.Shutdown(drainCtx); err != nil {
		logger.Warn("workers did not drain", zap.Error(err))
	}
	return runErr
}
