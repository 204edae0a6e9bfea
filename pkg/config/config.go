package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thalespaiva/bgphijack/pkg/asrel"
	"github.com/thalespaiva/bgphijack/pkg/corpus"
	"github.com/thalespaiva/bgphijack/pkg/logging"
	"github.com/thalespaiva/bgphijack/pkg/parallel"
	"github.com/thalespaiva/bgphijack/pkg/validation"
)

// ErrInvalidConfig is returned when a configuration fails validation
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full run configuration, loaded from YAML and overridden by
// command-line flags.
type Config struct {
	Inference   InferenceConfig   `yaml:"inference"`
	Corpus      CorpusConfig      `yaml:"corpus"`
	GroundTruth GroundTruthConfig `yaml:"ground_truth"`
	Output      OutputConfig      `yaml:"output"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Export      ExportConfig      `yaml:"export"`
	Log         LogConfig         `yaml:"log"`
}

// InferenceConfig selects the variant and its parameters
type InferenceConfig struct {
	Variant          string  `yaml:"variant" validate:"omitempty,oneof=basic refined heuristic"` // "" means heuristic
	TransitThreshold int     `yaml:"transit_threshold" validate:"gte=0"`
	PeeringRatio     float64 `yaml:"peering_ratio"`
	Workers          int     `yaml:"workers" validate:"gte=0"`
}

// CorpusConfig locates and parses the path corpus
type CorpusConfig struct {
	Input        string    `yaml:"input" validate:"source"`
	NumericASNs  bool      `yaml:"numeric_asns"`
	MaxLineBytes int       `yaml:"max_line_bytes" validate:"gte=0"`
	S3           S3Config  `yaml:"s3"`
	NNG          NNGConfig `yaml:"nng"`
}

// S3Config configures S3 and S3-compatible sources
type S3Config struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"`
	UsePathStyle    bool   `yaml:"use_path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// NNGConfig configures collector feeds
type NNGConfig struct {
	RecvTimeout time.Duration `yaml:"recv_timeout"`
}

// GroundTruthConfig locates the authoritative relationship table
type GroundTruthConfig struct {
	Path string `yaml:"path" validate:"source"`
}

// OutputConfig controls where results and diagnostics go
type OutputConfig struct {
	Results     string `yaml:"results"` // "" or "-" for stdout
	PrettyStats bool   `yaml:"pretty_stats"`
	Progress    bool   `yaml:"progress"`
}

// MetricsConfig controls metric export for batch runs
type MetricsConfig struct {
	Textfile    string `yaml:"textfile"`
	Pushgateway string `yaml:"pushgateway" validate:"omitempty,url"`
	Job         string `yaml:"job"`
	PushSecret  string `yaml:"push_secret" validate:"omitempty,min=32"` // signs a bearer token per push
}

// ExportConfig controls the results database
type ExportConfig struct {
	PostgresDSN string `yaml:"postgres_dsn"`
}

// LogConfig controls diagnostic logging
type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

// Default returns the configuration used when no file or flag overrides it.
func Default() Config {
	opts := asrel.DefaultInferenceOptions()
	return Config{
		Inference: InferenceConfig{
			Variant:          opts.Variant.String(),
			TransitThreshold: opts.TransitThreshold,
			PeeringRatio:     opts.PeeringRatio,
		},
		Corpus: CorpusConfig{
			Input:        "-",
			MaxLineBytes: corpus.DefaultMaxLineBytes,
			NNG:          NNGConfig{RecvTimeout: corpus.DefaultRecvTimeout},
		},
		Metrics: MetricsConfig{Job: "asrel"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct tags, then the cross-field rules.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	variant, err := asrel.ParseVariant(c.Inference.Variant)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cv := validation.NewConfigValidator("Config").
		MaxInt("Inference.Workers", c.Inference.Workers, parallel.MaxWorkers).
		When(variant == asrel.VariantHeuristic, func(cv *validation.ConfigValidator) {
			cv.GreaterThanFloat("Inference.PeeringRatio", c.Inference.PeeringRatio, 1)
		}).
		When(c.Corpus.NNG.RecvTimeout != 0, func(cv *validation.ConfigValidator) {
			cv.MinDuration("Corpus.NNG.RecvTimeout", c.Corpus.NNG.RecvTimeout, time.Millisecond)
		}).
		When(c.Metrics.Pushgateway != "", func(cv *validation.ConfigValidator) {
			cv.Required("Metrics.Job", c.Metrics.Job)
		}).
		Custom("Corpus.S3", func() error {
			if (c.Corpus.S3.AccessKeyID == "") != (c.Corpus.S3.SecretAccessKey == "") {
				return errors.New("access_key_id and secret_access_key must be set together")
			}
			return nil
		})
	if err := cv.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// InferenceOptions converts the inference section. Observer is left unset.
func (c *Config) InferenceOptions() (asrel.InferenceOptions, error) {
	variant, err := asrel.ParseVariant(c.Inference.Variant)
	if err != nil {
		return asrel.InferenceOptions{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return asrel.InferenceOptions{
		Variant:          variant,
		TransitThreshold: c.Inference.TransitThreshold,
		PeeringRatio:     c.Inference.PeeringRatio,
		Workers:          c.Inference.Workers,
	}, nil
}

// SourceOptions converts the corpus section for corpus.Open.
func (c *Config) SourceOptions() corpus.SourceOptions {
	return corpus.SourceOptions{
		S3: corpus.S3Options{
			Region:          c.Corpus.S3.Region,
			Endpoint:        c.Corpus.S3.Endpoint,
			UsePathStyle:    c.Corpus.S3.UsePathStyle,
			AccessKeyID:     c.Corpus.S3.AccessKeyID,
			SecretAccessKey: c.Corpus.S3.SecretAccessKey,
		},
		RecvTimeout: c.Corpus.NNG.RecvTimeout,
	}
}

// LoadOptions converts the corpus section for corpus.Load.
func (c *Config) LoadOptions() corpus.LoadOptions {
	return corpus.LoadOptions{
		Source:       corpus.DisplayName(c.Corpus.Input),
		NumericASNs:  c.Corpus.NumericASNs,
		MaxLineBytes: c.Corpus.MaxLineBytes,
	}
}

// LogLevel returns the configured diagnostic level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}
