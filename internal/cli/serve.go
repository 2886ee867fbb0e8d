package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ironsheep/pigment-mcp/internal/server"
	"github.com/ironsheep/pigment-mcp/internal/store"
	"github.com/ironsheep/pigment-mcp/internal/worker"
)

func serveCmd(opts *rootOptions, info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin/stdout (the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts, info)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions, info BuildInfo) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	st, err := store.Open(ctx, cfg.Storage.DBPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	w := worker.New(&worker.Pipeline{Quantize: cfg.QuantizeOptions(), Cluster: cfg.ClusterOptions()}, logger)
	go w.Run(ctx)

	logger.Info("pigment-mcp starting",
		"version", info.Version, "commit", info.GitCommit, "db", cfg.Storage.DBPath, "config", cfg.Path)

	srv := server.New(server.Deps{
		Store:    st,
		Analyzer: w,
		Config:   cfg,
		Logger:   logger,
		Version:  info.Version,
	})
	err = srv.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		logger.Info("pigment-mcp stopped")
		return nil
	}
	return err
}
