package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Data.Datasets = []DatasetConfig{{Name: "davis", Path: "testdata/davis.txt"}}
	ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no datasets", func(c *Config) { c.Data.Datasets = nil }},
		{"dataset without name", func(c *Config) { c.Data.Datasets[0].Name = "" }},
		{"dataset without path", func(c *Config) { c.Data.Datasets[0].Path = "" }},
		{"holdout below one", func(c *Config) { c.Split.HoldoutProteins = -1 }},
		{"empty hidden sizes", func(c *Config) { c.Model.HiddenSizes = nil }},
		{"zero layer width", func(c *Config) { c.Model.HiddenSizes = []int{512, 0} }},
		{"momentum out of range", func(c *Config) { c.Model.BatchNormMomentum = 1.5 }},
		{"negative epsilon", func(c *Config) { c.Model.BatchNormEpsilon = -1 }},
		{"zero epochs", func(c *Config) { c.Training.Epochs = -1 }},
		{"batch size one", func(c *Config) { c.Training.BatchSize = 1 }},
		{"negative learning rate", func(c *Config) { c.Training.LearningRate = -0.1 }},
		{"beta1 out of range", func(c *Config) { c.Training.Beta1 = 1.0 }},
		{"beta2 out of range", func(c *Config) { c.Training.Beta2 = 2.0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"metrics without namespace", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Namespace = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, int64(DefaultSeed), cfg.Split.Seed)
	assert.Equal(t, DefaultHoldoutProteins, cfg.Split.HoldoutProteins)
	assert.Equal(t, []int{512, 256, 128}, cfg.Model.HiddenSizes)
	assert.Equal(t, DefaultEpochs, cfg.Training.Epochs)
	assert.Equal(t, DefaultBatchSize, cfg.Training.BatchSize)
	assert.Equal(t, DefaultLearningRate, cfg.Training.LearningRate)
	assert.Equal(t, DefaultPositiveThreshold, cfg.Eval.PositiveThreshold)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Training.Epochs = 5
	cfg.Split.Seed = 7
	ApplyDefaults(cfg)

	assert.Equal(t, 5, cfg.Training.Epochs)
	assert.Equal(t, int64(7), cfg.Split.Seed)
}

func TestApplyDefaults_NilConfig(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

const sampleYAML = `
data:
  datasets:
    - name: davis
      path: testdata/davis.txt
training:
  epochs: 3
  batch_size: 32
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FileWithDefaults(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Training.Epochs)
	assert.Equal(t, 32, cfg.Training.BatchSize)
	// Unset fields come from defaults.
	assert.Equal(t, DefaultLearningRate, cfg.Training.LearningRate)
	assert.Equal(t, int64(DefaultSeed), cfg.Split.Seed)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AFFINITY_TRAINING_EPOCHS", "9")

	cfg, err := Load(writeTempConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Training.Epochs)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidConfig(t *testing.T) {
	yaml := `
data:
  datasets:
    - name: davis
      path: testdata/davis.txt
training:
  batch_size: 1
`
	_, err := Load(writeTempConfig(t, yaml))
	assert.Error(t, err)
}

func TestMustLoad_PanicsOnMissingFile(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}
