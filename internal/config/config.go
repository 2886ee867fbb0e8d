// Package config loads pigment-mcp settings from YAML with environment
// overrides and maps them onto the engine option structs.
//
// Every field has a default, so an absent or partial file is valid. Lookup
// order for the file is the explicit path, then PIGMENT_MCP_CONFIG, then
// pigment-mcp/config.yaml in the XDG config directories.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/pigment-mcp/internal/cluster"
	"github.com/ironsheep/pigment-mcp/internal/imaging"
	"github.com/ironsheep/pigment-mcp/internal/metric"
	"github.com/ironsheep/pigment-mcp/internal/optimizer"
	"github.com/ironsheep/pigment-mcp/internal/quantize"
)

// Environment variables read by Load.
const (
	EnvConfig   = "PIGMENT_MCP_CONFIG"
	EnvDB       = "PIGMENT_MCP_DB"
	EnvLogLevel = "PIGMENT_MCP_LOG_LEVEL"
)

// AppName is the directory used under the XDG base directories.
const AppName = "pigment-mcp"

// MaxColorCount bounds cluster.color_count.
const MaxColorCount = 64

// ErrInvalidConfig wraps every validation and decoding failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Recipe    RecipeConfig    `yaml:"recipe"`
	Quantizer QuantizerConfig `yaml:"quantizer"`
	Cluster   ClusterConfig   `yaml:"cluster"`
	Image     ImageConfig     `yaml:"image"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
}

type RecipeConfig struct {
	MaxIngredients       int     `yaml:"max_ingredients"`
	ExactMatchThreshold  float64 `yaml:"exact_match_threshold"`
	UnreachableThreshold float64 `yaml:"unreachable_threshold"`
	Metric               string  `yaml:"metric"`
	// ProportionSteps is the grid step in percent per ingredient count.
	// Entries in the file are merged over the defaults.
	ProportionSteps map[int]int `yaml:"proportion_steps"`
}

type QuantizerConfig struct {
	MaxIterations        int     `yaml:"max_iterations"`
	ConvergenceThreshold float64 `yaml:"convergence_threshold"`
	// Seed fixes the K-means generator. 0 seeds from the clock.
	Seed    uint64 `yaml:"seed"`
	Workers int    `yaml:"workers"`
}

type ClusterConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	AchromaticThreshold float64 `yaml:"achromatic_threshold"`
	SelectionMethod     string  `yaml:"selection_method"`
	ColorCount          int     `yaml:"color_count"`
}

type ImageConfig struct {
	MaxDimension int     `yaml:"max_dimension"`
	BlurRadius   float64 `yaml:"blur_radius"`
}

type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	opt := optimizer.DefaultOptions()
	q := quantize.DefaultOptions()
	cl := cluster.DefaultOptions()

	steps := make(map[int]int, len(opt.ProportionSteps))
	for k, v := range opt.ProportionSteps {
		steps[k] = v
	}

	return Config{
		Recipe: RecipeConfig{
			MaxIngredients:       opt.MaxIngredients,
			ExactMatchThreshold:  opt.ExactMatchThreshold,
			UnreachableThreshold: opt.UnreachableThreshold,
			Metric:               string(opt.Metric),
			ProportionSteps:      steps,
		},
		Quantizer: QuantizerConfig{
			MaxIterations:        q.MaxIterations,
			ConvergenceThreshold: q.ConvergenceThreshold,
		},
		Cluster: ClusterConfig{
			SimilarityThreshold: cl.SimilarityThreshold,
			AchromaticThreshold: cl.AchromaticThreshold,
			SelectionMethod:     string(cl.Method),
			ColorCount:          12,
		},
		Image: ImageConfig{
			MaxDimension: imaging.DefaultMaxDimension,
		},
		Storage: StorageConfig{
			DBPath: DefaultDBPath(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultDBPath returns pigment-mcp/pigments.db under the XDG data home.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, AppName, "pigments.db")
}

// Load reads the config file, applies environment overrides and validates
// the result. A missing file is an error only when path or
// PIGMENT_MCP_CONFIG names it explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		if found, err := xdg.SearchConfigFile(filepath.Join(AppName, "config.yaml")); err == nil {
			path = found
		}
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decode(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
		cfg.Path = path
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		if path != "" {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults without reading the environment.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := decode(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvDB)); v != "" {
		c.Storage.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
}

// Validate reports every out-of-range value in one ErrInvalidConfig error.
func (c Config) Validate() error {
	var problems []string
	bad := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	r := c.Recipe
	if r.MaxIngredients < 1 || r.MaxIngredients > optimizer.MaxIngredientsLimit {
		bad("recipe.max_ingredients must be 1..%d, got %d", optimizer.MaxIngredientsLimit, r.MaxIngredients)
	}
	if r.ExactMatchThreshold <= 0 {
		bad("recipe.exact_match_threshold must be positive")
	}
	if r.UnreachableThreshold <= r.ExactMatchThreshold {
		bad("recipe.unreachable_threshold must exceed exact_match_threshold")
	}
	if _, err := metric.ParseMetric(r.Metric); err != nil {
		bad("recipe.metric: %v", err)
	}
	keys := make([]int, 0, len(r.ProportionSteps))
	for k := range r.ProportionSteps {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		step := r.ProportionSteps[k]
		switch {
		case k < 2 || k > optimizer.MaxIngredientsLimit:
			bad("recipe.proportion_steps: ingredient count %d out of range 2..%d", k, optimizer.MaxIngredientsLimit)
		case step < 1 || step > 100/k:
			bad("recipe.proportion_steps[%d] must be 1..%d, got %d", k, 100/k, step)
		}
	}

	q := c.Quantizer
	if q.MaxIterations < 1 {
		bad("quantizer.max_iterations must be at least 1")
	}
	if q.ConvergenceThreshold < 0 {
		bad("quantizer.convergence_threshold must not be negative")
	}
	if q.Workers < 0 {
		bad("quantizer.workers must not be negative")
	}

	cl := c.Cluster
	if cl.SimilarityThreshold <= 0 {
		bad("cluster.similarity_threshold must be positive")
	}
	if cl.AchromaticThreshold < 0 || cl.AchromaticThreshold > 100 {
		bad("cluster.achromatic_threshold must be 0..100")
	}
	if _, err := cluster.ParseMethod(cl.SelectionMethod); err != nil {
		bad("cluster.selection_method: %v", err)
	}
	if cl.ColorCount < 1 || cl.ColorCount > MaxColorCount {
		bad("cluster.color_count must be 1..%d, got %d", MaxColorCount, cl.ColorCount)
	}

	if c.Image.MaxDimension < 1 {
		bad("image.max_dimension must be at least 1")
	}
	if c.Image.BlurRadius < 0 {
		bad("image.blur_radius must not be negative")
	}

	if strings.TrimSpace(c.Storage.DBPath) == "" {
		bad("storage.db_path must not be empty")
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		bad("log.level: unknown level %q", c.Log.Level)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// OptimizerOptions maps the recipe section.
func (c Config) OptimizerOptions() optimizer.Options {
	m, _ := metric.ParseMetric(c.Recipe.Metric)
	steps := make(map[int]int, len(c.Recipe.ProportionSteps))
	for k, v := range c.Recipe.ProportionSteps {
		steps[k] = v
	}
	return optimizer.Options{
		MaxIngredients:       c.Recipe.MaxIngredients,
		ExactMatchThreshold:  c.Recipe.ExactMatchThreshold,
		UnreachableThreshold: c.Recipe.UnreachableThreshold,
		ProportionSteps:      steps,
		Metric:               m,
	}
}

// QuantizeOptions maps the quantizer section. The returned generator is
// not safe for concurrent use; the worker runs one request at a time.
func (c Config) QuantizeOptions() quantize.Options {
	return quantize.Options{
		MaxIterations:        c.Quantizer.MaxIterations,
		ConvergenceThreshold: c.Quantizer.ConvergenceThreshold,
		Rand:                 quantize.NewRand(c.Quantizer.Seed),
		Workers:              c.Quantizer.Workers,
	}
}

// ClusterOptions maps the cluster section.
func (c Config) ClusterOptions() cluster.Options {
	m, _ := cluster.ParseMethod(c.Cluster.SelectionMethod)
	return cluster.Options{
		SimilarityThreshold: c.Cluster.SimilarityThreshold,
		AchromaticThreshold: c.Cluster.AchromaticThreshold,
		Method:              m,
	}
}

// PixelOptions maps the image section.
func (c Config) PixelOptions() imaging.PixelOptions {
	return imaging.PixelOptions{
		MaxDimension: c.Image.MaxDimension,
		BlurRadius:   c.Image.BlurRadius,
	}
}
