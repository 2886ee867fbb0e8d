package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
	"github.com/ironsheep/pigment-mcp/internal/metric"
	"github.com/ironsheep/pigment-mcp/internal/optimizer"
	"github.com/ironsheep/pigment-mcp/internal/palette"
	"github.com/ironsheep/pigment-mcp/internal/recipe"
	"github.com/ironsheep/pigment-mcp/internal/store"
)

type recipeOptions struct {
	palette        []string
	maxIngredients int
	metric         string
	save           bool
	name           string
	asJSON         bool
}

func recipeCmd(root *rootOptions) *cobra.Command {
	o := &recipeOptions{}

	c := &cobra.Command{
		Use:   "recipe <color>",
		Short: "Find a mixing recipe for a target color",
		Long:  "Find the mix of palette colors closest to the target. The stored palette is used unless --palette is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipe(cmd, root, o, args[0])
		},
	}

	c.Flags().StringSliceVarP(&o.palette, "palette", "p", nil, "ad-hoc palette colors, comma separated (e.g. #FF0000,#FFFF00)")
	c.Flags().IntVarP(&o.maxIngredients, "max", "m", 0, "largest number of ingredients (1-4; default from config)")
	c.Flags().StringVar(&o.metric, "metric", "", "color difference formula: ciede2000 or cie76")
	c.Flags().BoolVar(&o.save, "save", false, "store the recipe")
	c.Flags().StringVar(&o.name, "name", "", "recipe name when saving")
	c.Flags().BoolVar(&o.asJSON, "json", false, "print the full result as JSON")
	return c
}

func runRecipe(cmd *cobra.Command, root *rootOptions, o *recipeOptions, arg string) error {
	cfg, logger, err := root.load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	rgb, err := colormodel.Parse(arg)
	if err != nil {
		return err
	}
	target, err := colormodel.FromRGB(rgb, colormodel.WithID("target"))
	if err != nil {
		return err
	}

	opts := cfg.OptimizerOptions()
	if o.maxIngredients > 0 {
		opts.MaxIngredients = lo.Clamp(o.maxIngredients, 1, optimizer.MaxIngredientsLimit)
	}
	if o.metric != "" {
		if opts.Metric, err = metric.ParseMetric(o.metric); err != nil {
			return err
		}
	}

	var st *store.Store
	if len(o.palette) == 0 || o.save {
		if st, err = store.Open(ctx, cfg.Storage.DBPath, logger); err != nil {
			return err
		}
		defer st.Close()
	}

	var p palette.Palette
	if len(o.palette) > 0 {
		if p, err = adHocPalette(o.palette); err != nil {
			return err
		}
	} else if p, err = st.Palette(ctx); err != nil {
		return err
	}

	res, err := optimizer.FindRecipe(target, p, opts)
	if err != nil {
		return err
	}
	logger.Debug("recipe search finished", "target", target.Hex, "evaluated", res.Evaluated, "distance", res.Distance)

	if o.save {
		res.Recipe.Name = o.name
		if res.Recipe, err = st.SaveRecipe(ctx, res.Recipe); err != nil {
			return err
		}
	}

	if o.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printRecipe(cmd.OutOrStdout(), res, p, o.save)
	return nil
}

func adHocPalette(colors []string) (palette.Palette, error) {
	out := make([]colormodel.Color, 0, len(colors))
	for i, s := range colors {
		rgb, err := colormodel.Parse(s)
		if err != nil {
			return palette.Palette{}, fmt.Errorf("palette color %q: %w", s, err)
		}
		c, err := colormodel.FromRGB(rgb, colormodel.WithID(fmt.Sprintf("p%d", i+1)))
		if err != nil {
			return palette.Palette{}, err
		}
		out = append(out, c)
	}
	return palette.New(out...), nil
}

func printRecipe(w io.Writer, res *optimizer.Result, lookup recipe.ColorLookup, saved bool) {
	r := res.Recipe
	fmt.Fprintf(w, "Target:  %s\n", r.TargetColor.Hex)
	fmt.Fprintf(w, "Result:  %s (distance %.2f, %s)\n", r.ResultColor.Hex, res.Distance, metric.Interpret(res.Distance))
	fmt.Fprintln(w, recipe.Format(r, lookup, recipe.StyleParts))
	fmt.Fprintln(w, recipe.Format(r, lookup, recipe.StylePercentages))
	if res.Sequential {
		fmt.Fprintln(w, "Add the ingredients one at a time, in order.")
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning [%s]: %s\n", warn.Severity, warn.Message)
	}
	if res.Suggestion != nil {
		fmt.Fprintf(w, "Consider adding a pigment near %s.\n", res.Suggestion.Hex)
	}
	if saved {
		fmt.Fprintf(w, "Saved as %s\n", r.ID)
	}
}
