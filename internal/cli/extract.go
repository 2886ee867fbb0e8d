package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/pigment-mcp/internal/server"
	"github.com/ironsheep/pigment-mcp/internal/worker"
)

type extractOptions struct {
	colors int
	method string
	asJSON bool
}

func extractCmd(root *rootOptions) *cobra.Command {
	o := &extractOptions{}

	c := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract candidate pigment colors from an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, root, o, args[0])
		},
	}

	c.Flags().IntVarP(&o.colors, "colors", "n", 0, "number of K-means clusters (default from config)")
	c.Flags().StringVar(&o.method, "method", "", "representative or dominant (default from config)")
	c.Flags().BoolVar(&o.asJSON, "json", false, "print the full result as JSON")
	return c
}

func runExtract(cmd *cobra.Command, root *rootOptions, o *extractOptions, path string) error {
	cfg, logger, err := root.load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	w := worker.New(&worker.Pipeline{Quantize: cfg.QuantizeOptions(), Cluster: cfg.ClusterOptions()}, logger)
	go w.Run(ctx)

	srv := server.New(server.Deps{Analyzer: w, Config: cfg, Logger: logger})
	res, err := srv.ExtractPigments(ctx, path, o.colors, o.method)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if o.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	for _, d := range res.Details {
		fmt.Fprintf(out, "%s  %-7s  hsl(%.0f, %.0f%%, %.0f%%)\n", d.Hex, d.Temperature.Kind, d.HSL.H, d.HSL.S, d.HSL.L)
	}
	return nil
}
