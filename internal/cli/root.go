// Package cli is the pigment-mcp command line. Without a subcommand it
// serves MCP over stdio.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/pigment-mcp/internal/config"
	"github.com/ironsheep/pigment-mcp/internal/logging"
)

// BuildInfo is stamped into the binary by ldflags.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// Execute runs the root command and exits non-zero on failure.
func Execute(info BuildInfo) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(info)
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	debug      bool
}

// load reads the configuration and installs the process logger.
func (o *rootOptions) load() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.Setup(cfg.Log.Level, o.debug)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newRootCmd(info BuildInfo) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "pigment-mcp",
		Short:        "MCP server for paint color mixing recipes",
		Long:         "pigment-mcp finds paint mixing recipes for target colors and extracts pigments from images.\nWithout a subcommand it speaks MCP over stdin/stdout.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts, info)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: $"+config.EnvConfig+" or the XDG config dir)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging to stderr")

	cmd.AddCommand(
		serveCmd(opts, info),
		versionCmd(info),
		recipeCmd(opts),
		extractCmd(opts),
	)
	return cmd
}
