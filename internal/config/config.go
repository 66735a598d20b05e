// Package config loads the run configuration of the seqmnist CLI.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/seqmnist/internal/rnn"
)

// Config captures the knobs of one training run.
type Config struct {
	// Model.
	Category     string  `yaml:"category"`
	LearningRate float64 `yaml:"learning_rate"`
	MaxIters     int     `yaml:"max_iters"`
	BatchSize    int     `yaml:"batch_size"`
	NInput       int     `yaml:"n_input"`
	NSteps       int     `yaml:"n_steps"`
	NHidden      int     `yaml:"n_hidden"`
	NClasses     int     `yaml:"n_classes"`
	Regression   string  `yaml:"regression"`

	// Training loop.
	Order        string `yaml:"order"`
	ReportEvery  int    `yaml:"report_every"`
	SampleSize   int    `yaml:"sample_size"`
	DisplayEvery int    `yaml:"display_every"`

	// Data.
	DataDir        string `yaml:"data_dir"`
	ValidationSize int    `yaml:"validation_size"`
	Verify         bool   `yaml:"verify"`
	Synthetic      bool   `yaml:"synthetic"`
	Seed           int64  `yaml:"seed"`

	// Outputs.
	CSVPath        string `yaml:"csv"`
	PlotPath       string `yaml:"plot"`
	CheckpointPath string `yaml:"checkpoint"`
	LogLevel       string `yaml:"log_level"`
}

// Default returns the row-by-row LSTM setup.
func Default() *Config {
	m := rnn.DefaultConfig()
	return &Config{
		Category:     string(m.Category),
		LearningRate: float64(m.LearningRate),
		MaxIters:     m.MaxIters,
		BatchSize:    m.BatchSize,
		NInput:       m.NInput,
		NSteps:       m.NSteps,
		NHidden:      m.NHidden,
		NClasses:     m.NClasses,
		Regression:   string(m.Regression),
		Order:        "C",
		ReportEvery:  10,
		DisplayEvery: 100,
		DataDir:      "./data",
		LogLevel:     "info",
	}
}

// Load reads a YAML file on top of Default. Unknown keys are rejected.
//
// The result is not validated; call Validate once any overrides have been
// applied.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Overrides captures CLI supplied values. Nil fields leave the config
// untouched; a non-nil field is applied even when it holds the zero value.
type Overrides struct {
	Category     *string
	LearningRate *float64
	MaxIters     *int
	BatchSize    *int
	NHidden      *int
	Regression   *string
	Order        *string
	ReportEvery  *int
	SampleSize   *int
	DisplayEvery *int
	DataDir      *string
	Synthetic    *bool
	Seed         *int64
	CSVPath      *string
	PlotPath     *string
	Checkpoint   *string
	LogLevel     *string
}

// ApplyOverrides updates c with every non-nil override.
func (c *Config) ApplyOverrides(o Overrides) {
	set(&c.Category, o.Category)
	set(&c.LearningRate, o.LearningRate)
	set(&c.MaxIters, o.MaxIters)
	set(&c.BatchSize, o.BatchSize)
	set(&c.NHidden, o.NHidden)
	set(&c.Regression, o.Regression)
	set(&c.Order, o.Order)
	set(&c.ReportEvery, o.ReportEvery)
	set(&c.SampleSize, o.SampleSize)
	set(&c.DisplayEvery, o.DisplayEvery)
	set(&c.DataDir, o.DataDir)
	set(&c.Synthetic, o.Synthetic)
	set(&c.Seed, o.Seed)
	set(&c.CSVPath, o.CSVPath)
	set(&c.PlotPath, o.PlotPath)
	set(&c.CheckpointPath, o.Checkpoint)
	set(&c.LogLevel, o.LogLevel)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := c.Model(); err != nil {
		return err
	}
	if _, err := c.TrainOptions(); err != nil {
		return err
	}
	if !c.Synthetic && c.DataDir == "" {
		return errors.New("data_dir must be set unless synthetic is true")
	}
	if c.SampleSize < 0 {
		return fmt.Errorf("sample_size must be >= 0 (got %d)", c.SampleSize)
	}
	if c.DisplayEvery < 0 {
		return fmt.Errorf("display_every must be >= 0 (got %d)", c.DisplayEvery)
	}
	if c.ReportEvery <= 0 {
		return fmt.Errorf("report_every must be > 0 (got %d)", c.ReportEvery)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. An empty value means info.
func (c *Config) Level() (logrus.Level, error) {
	if c.LogLevel == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Model converts the model section into an rnn.Config.
func (c *Config) Model() (rnn.Config, error) {
	category, err := rnn.ParseCategory(c.Category)
	if err != nil {
		return rnn.Config{}, err
	}
	regression, err := rnn.ParseRegression(c.Regression)
	if err != nil {
		return rnn.Config{}, err
	}
	m := rnn.Config{
		Category:     category,
		LearningRate: float32(c.LearningRate),
		MaxIters:     c.MaxIters,
		BatchSize:    c.BatchSize,
		NInput:       c.NInput,
		NSteps:       c.NSteps,
		NHidden:      c.NHidden,
		NClasses:     c.NClasses,
		Regression:   regression,
	}
	if err := m.Validate(); err != nil {
		return rnn.Config{}, err
	}
	return m, nil
}

// TrainOptions converts the training loop section into rnn.TrainOptions.
func (c *Config) TrainOptions() (rnn.TrainOptions, error) {
	order, err := rnn.ParseOrder(c.Order)
	if err != nil {
		return rnn.TrainOptions{}, err
	}
	return rnn.TrainOptions{
		Order:          order,
		ReportEvery:    c.ReportEvery,
		SampleSize:     c.SampleSize,
		DisplayEvery:   c.DisplayEvery,
		CheckpointPath: c.CheckpointPath,
	}, nil
}
