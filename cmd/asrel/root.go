package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/thalespaiva/bgphijack/pkg/config"
	"github.com/thalespaiva/bgphijack/pkg/logging"
	"github.com/thalespaiva/bgphijack/pkg/metrics"
	"github.com/thalespaiva/bgphijack/pkg/pipeline"
)

const version = "1.0.0"

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "asrel",
		Short: "Infer AS relationships and check BGP paths for valleys",
		Long: `asrel infers the business relationship of every AS link seen in a corpus
of BGP AS paths (Gao's algorithm, basic, refined or heuristic variant) and
marks each path GREEN when it is valley-free or RED when it is not.

Paths are read one per line, ASNs separated by single spaces, from a file,
standard input ("-"), s3://bucket/key or an nng+tcp:// collector feed.
Files ending in .sz or .snappy are decompressed.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "diagnostic log level (debug, info, warn, error)")

	cmd.AddCommand(
		newInferCmd(opts),
		newValidateCmd(opts),
		newQueryCmd(opts),
		newShowCmd(opts),
	)
	return cmd
}

// loadConfig reads the configuration file, applies flag overrides and
// validates the result.
func (o *rootOptions) loadConfig(apply func(*config.Config)) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return config.Config{}, err
		}
	}

	apply(&cfg)
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newRunner wires a pipeline to the command's streams.
func newRunner(cmd *cobra.Command, cfg config.Config) *pipeline.Runner {
	logger := logging.NewJSONLogger(cmd.ErrOrStderr(), cfg.LogLevel())
	logging.SetDefaultLogger(logger)

	return pipeline.New(cfg,
		pipeline.WithLogger(logger.With(logging.Component("asrel"))),
		pipeline.WithMetrics(metrics.NewRegistry()),
		pipeline.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		pipeline.WithStdin(cmd.InOrStdin()),
	)
}

// corpusFlags are shared by every command that reads paths.
type corpusFlags struct {
	input   string
	numeric bool
	workers int
}

func (f *corpusFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.input, "input", "i", "-", "path corpus: file, -, s3://bucket/key or nng+tcp://host:port")
	fs.BoolVar(&f.numeric, "numeric", false, "reject ASNs that are not unsigned 32-bit integers")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 for one per CPU)")
}

func (f *corpusFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("input") {
		cfg.Corpus.Input = f.input
	}
	if fs.Changed("numeric") {
		cfg.Corpus.NumericASNs = f.numeric
	}
	if fs.Changed("workers") {
		cfg.Inference.Workers = f.workers
	}
}

// inferenceFlags select and tune the inference variant.
type inferenceFlags struct {
	variant   string
	threshold int
	ratio     float64
}

func (f *inferenceFlags) register(fs *pflag.FlagSet) {
	def := config.Default().Inference
	fs.StringVar(&f.variant, "variant", def.Variant, "inference variant: basic, refined or heuristic")
	fs.IntVarP(&f.threshold, "threshold", "L", def.TransitThreshold, "transit-count threshold for refined and heuristic")
	fs.Float64VarP(&f.ratio, "peering-ratio", "R", def.PeeringRatio, "maximum degree ratio for peering promotion")
}

func (f *inferenceFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("variant") {
		cfg.Inference.Variant = f.variant
	}
	if fs.Changed("threshold") {
		cfg.Inference.TransitThreshold = f.threshold
	}
	if fs.Changed("peering-ratio") {
		cfg.Inference.PeeringRatio = f.ratio
	}
}

// outputFlags control results, diagnostics and exports.
type outputFlags struct {
	output      string
	pretty      bool
	progress    bool
	textfile    string
	pushgateway string
	postgres    string
}

func (f *outputFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.output, "output", "o", "-", "results file (- for stdout)")
	fs.BoolVar(&f.pretty, "pretty", false, "render statistics as a table")
	fs.BoolVar(&f.progress, "progress", false, "show live phase progress on stderr")
	fs.StringVar(&f.textfile, "metrics-textfile", "", "write metrics in Prometheus text format to this file")
	fs.StringVar(&f.pushgateway, "pushgateway", "", "push metrics to this Prometheus Pushgateway URL")
	fs.StringVar(&f.postgres, "postgres", "", "store the run in this PostgreSQL database")
}

func (f *outputFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("output") {
		cfg.Output.Results = f.output
	}
	if fs.Changed("pretty") {
		cfg.Output.PrettyStats = f.pretty
	}
	if fs.Changed("progress") {
		cfg.Output.Progress = f.progress
	}
	if fs.Changed("metrics-textfile") {
		cfg.Metrics.Textfile = f.textfile
	}
	if fs.Changed("pushgateway") {
		cfg.Metrics.Pushgateway = f.pushgateway
	}
	if fs.Changed("postgres") {
		cfg.Export.PostgresDSN = f.postgres
	}
}
