package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pigment-mcp/internal/cluster"
	"github.com/ironsheep/pigment-mcp/internal/metric"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 4, cfg.Recipe.MaxIngredients)
	assert.Equal(t, 2.0, cfg.Recipe.ExactMatchThreshold)
	assert.Equal(t, 15.0, cfg.Recipe.UnreachableThreshold)
	assert.Equal(t, "ciede2000", cfg.Recipe.Metric)
	assert.Equal(t, map[int]int{2: 5, 3: 5, 4: 10}, cfg.Recipe.ProportionSteps)
	assert.Equal(t, 20, cfg.Quantizer.MaxIterations)
	assert.Equal(t, 12, cfg.Cluster.ColorCount)
	assert.Equal(t, "representative", cfg.Cluster.SelectionMethod)
	assert.Equal(t, 150, cfg.Image.MaxDimension)
	assert.Equal(t, "pigments.db", filepath.Base(cfg.Storage.DBPath))
	assert.Equal(t, AppName, filepath.Base(filepath.Dir(cfg.Storage.DBPath)))
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv(EnvDB, "")
	t.Setenv(EnvLogLevel, "")
	path := writeConfig(t, `
recipe:
  max_ingredients: 3
  metric: cie76
  proportion_steps:
    2: 10
quantizer:
  seed: 42
cluster:
  selection_method: Dominant
  color_count: 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, 3, cfg.Recipe.MaxIngredients)
	assert.Equal(t, 2.0, cfg.Recipe.ExactMatchThreshold, "unset fields keep defaults")
	assert.Equal(t, map[int]int{2: 10, 3: 5, 4: 10}, cfg.Recipe.ProportionSteps)
	assert.Equal(t, uint64(42), cfg.Quantizer.Seed)
	assert.Equal(t, 8, cfg.Cluster.ColorCount)

	opt := cfg.OptimizerOptions()
	assert.Equal(t, metric.CIE76, opt.Metric)
	assert.Equal(t, 3, opt.MaxIngredients)
	assert.Equal(t, cluster.Dominant, cfg.ClusterOptions().Method)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "storage:\n  db_path: /from/file.db\nlog:\n  level: info\n")
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvDB, "/from/env.db")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "/from/env.db", cfg.Storage.DBPath)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EmptyFile(t *testing.T) {
	t.Setenv(EnvDB, "")
	t.Setenv(EnvLogLevel, "")
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default().Recipe, cfg.Recipe)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv(EnvDB, "")
	t.Setenv(EnvLogLevel, "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "recipe:\n  max_ingredient: 3\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig, "unknown keys are rejected")

	_, err = Load(writeConfig(t, "recipe: [1, 2\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	path := writeConfig(t, "cluster:\n  color_count: 0\n")
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"too many ingredients", func(c *Config) { c.Recipe.MaxIngredients = 5 }, "recipe.max_ingredients"},
		{"zero ingredients", func(c *Config) { c.Recipe.MaxIngredients = 0 }, "recipe.max_ingredients"},
		{"exact threshold", func(c *Config) { c.Recipe.ExactMatchThreshold = 0 }, "exact_match_threshold"},
		{"unreachable below exact", func(c *Config) { c.Recipe.UnreachableThreshold = 1 }, "unreachable_threshold"},
		{"metric", func(c *Config) { c.Recipe.Metric = "cmc" }, "recipe.metric"},
		{"step count", func(c *Config) { c.Recipe.ProportionSteps[5] = 5 }, "ingredient count 5"},
		{"step size", func(c *Config) { c.Recipe.ProportionSteps[4] = 30 }, "proportion_steps[4]"},
		{"iterations", func(c *Config) { c.Quantizer.MaxIterations = 0 }, "max_iterations"},
		{"convergence", func(c *Config) { c.Quantizer.ConvergenceThreshold = -1 }, "convergence_threshold"},
		{"workers", func(c *Config) { c.Quantizer.Workers = -2 }, "workers"},
		{"similarity", func(c *Config) { c.Cluster.SimilarityThreshold = 0 }, "similarity_threshold"},
		{"achromatic", func(c *Config) { c.Cluster.AchromaticThreshold = 101 }, "achromatic_threshold"},
		{"method", func(c *Config) { c.Cluster.SelectionMethod = "median" }, "selection_method"},
		{"color count", func(c *Config) { c.Cluster.ColorCount = MaxColorCount + 1 }, "color_count"},
		{"max dimension", func(c *Config) { c.Image.MaxDimension = 0 }, "max_dimension"},
		{"blur", func(c *Config) { c.Image.BlurRadius = -1 }, "blur_radius"},
		{"db path", func(c *Config) { c.Storage.DBPath = " " }, "db_path"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Recipe.MaxIngredients = 9
	cfg.Cluster.ColorCount = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_ingredients")
	assert.Contains(t, err.Error(), "color_count")
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte("image:\n  max_dimension: 64\n  blur_radius: 1.5\n"))
	require.NoError(t, err)

	px := cfg.PixelOptions()
	assert.Equal(t, 64, px.MaxDimension)
	assert.Equal(t, 1.5, px.BlurRadius)
	assert.Nil(t, px.Region)
}

func TestQuantizeOptions_SeedIsReproducible(t *testing.T) {
	cfg := Default()
	cfg.Quantizer.Seed = 99

	a := cfg.QuantizeOptions()
	b := cfg.QuantizeOptions()
	require.NotNil(t, a.Rand)
	for range 5 {
		assert.Equal(t, a.Rand.Uint64(), b.Rand.Uint64())
	}
	assert.Equal(t, 20, a.MaxIterations)
}

func TestOptimizerOptions_CopiesSteps(t *testing.T) {
	cfg := Default()
	opt := cfg.OptimizerOptions()
	opt.ProportionSteps[2] = 50
	assert.Equal(t, 5, cfg.Recipe.ProportionSteps[2])
}
