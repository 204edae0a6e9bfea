package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/thalespaiva/bgphijack/pkg/asrel"
	"github.com/thalespaiva/bgphijack/pkg/auth"
	"github.com/thalespaiva/bgphijack/pkg/config"
	"github.com/thalespaiva/bgphijack/pkg/corpus"
	"github.com/thalespaiva/bgphijack/pkg/export"
	"github.com/thalespaiva/bgphijack/pkg/logging"
	"github.com/thalespaiva/bgphijack/pkg/metrics"
	"github.com/thalespaiva/bgphijack/pkg/progress"
	"github.com/thalespaiva/bgphijack/pkg/report"
)

// Run statuses for metrics.
const (
	statusSuccess = "success"
	statusError   = "error"
)

// ErrNoGroundTruth is returned by Validate when no relationship table is configured
var ErrNoGroundTruth = errors.New("no ground-truth relationship table configured")

// Store persists finished runs and reads them back.
type Store interface {
	SaveRun(ctx context.Context, run export.Run) (map[string]int, error)
	GetRun(ctx context.Context, id uuid.UUID) (*export.RunRecord, error)
	CountVerdicts(ctx context.Context, id uuid.UUID, verdict string) (int, error)
	Close() error
}

// Runner executes configured runs end to end: load, classify, report,
// export.
type Runner struct {
	cfg     config.Config
	logger  logging.Logger
	metrics *metrics.Registry
	stdout  io.Writer
	stderr  io.Writer
	source  corpus.SourceOptions

	// openStore is called when export.postgres_dsn is set
	openStore func(ctx context.Context, dsn string) (Store, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the diagnostic logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithMetrics sets the metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(r *Runner) { r.metrics = reg }
}

// WithOutput replaces standard output and standard error.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithStdin replaces standard input for "-" sources.
func WithStdin(in io.Reader) Option {
	return func(r *Runner) { r.source.Stdin = in }
}

// WithObjects replaces the S3 client used for s3:// sources.
func WithObjects(objects corpus.ObjectGetter) Option {
	return func(r *Runner) { r.source.Objects = objects }
}

// WithStore replaces the PostgreSQL store opened for export.postgres_dsn.
func WithStore(open func(ctx context.Context, dsn string) (Store, error)) Option {
	return func(r *Runner) { r.openStore = open }
}

// New creates a Runner for cfg.
func New(cfg config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		logger:  logging.NewNopLogger(),
		metrics: metrics.NewRegistry(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		source:  cfg.SourceOptions(),
		openStore: func(ctx context.Context, dsn string) (Store, error) {
			return export.NewPGStore(ctx, dsn)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Metrics returns the registry the runner records into.
func (r *Runner) Metrics() *metrics.Registry {
	return r.metrics
}

// InferResult is the outcome of Infer.
type InferResult struct {
	RunID     uuid.UUID
	Load      corpus.LoadStats
	Inference *asrel.Inference
	Verdicts  []asrel.Verdict
	Summary   report.Summary
}

// ValidateResult is the outcome of Validate.
type ValidateResult struct {
	RunID       uuid.UUID
	Load        corpus.LoadStats
	GroundTruth *asrel.GroundTruthGraph
	Verdicts    []asrel.Verdict
	Summary     report.Summary
}

// observers builds the phase observers for one run. The returned function
// stops any live display.
func (r *Runner) observers(logger logging.Logger) (asrel.PhaseObserver, func()) {
	obs := asrel.Observers{
		progress.NewLogObserver(logger),
		metrics.NewPhaseRecorder(r.metrics),
	}
	if !r.cfg.Output.Progress {
		return obs, func() {}
	}
	display := progress.NewDisplay(r.stderr)
	return append(obs, display), func() {
		if err := display.Close(); err != nil {
			logger.Warn("progress display failed", logging.Error(err))
		}
	}
}

// loadCorpus reads the configured corpus. onMalformed may be nil.
func (r *Runner) loadCorpus(ctx context.Context, logger logging.Logger, onMalformed func(*asrel.ParseError)) (*asrel.Corpus, corpus.LoadStats, error) {
	timer := logging.StartTimer(logger, "corpus loaded", logging.Source(corpus.DisplayName(r.cfg.Corpus.Input)))

	opts := r.cfg.LoadOptions()
	opts.OnMalformed = onMalformed
	c, stats, err := corpus.LoadSource(ctx, r.cfg.Corpus.Input, r.source, opts, logger)
	if err != nil {
		timer.EndError(err)
		return nil, stats, fmt.Errorf("load corpus: %w", err)
	}

	elapsed := timer.End(
		logging.String("digest", stats.Digest),
		logging.Int("paths", stats.Paths),
		logging.Int("malformed", stats.Malformed),
		logging.Int("degenerate", stats.Degenerate),
		logging.Int("ases", c.NodeCount()),
	)
	r.metrics.RecordCorpus(stats.Paths, stats.Blank, stats.Malformed, c, elapsed)
	return c, stats, nil
}

// Infer runs inference over the configured corpus, writes one result line
// per path and the relationship statistics, then exports metrics and rows.
func (r *Runner) Infer(ctx context.Context) (*InferResult, error) {
	res, err := r.infer(ctx)
	if err != nil {
		return nil, err
	}
	logger := r.logger.With(logging.RunID(res.RunID.String()))

	if err := r.writeResults(res.Inference.Corpus, res.Verdicts); err != nil {
		return nil, err
	}
	if err := r.writeStats(res.Summary); err != nil {
		return nil, err
	}
	r.metrics.RecordVerdicts(string(report.ModeInferred), res.Verdicts)

	if err := r.export(ctx, logger, res.RunID, report.ModeInferred, res.Summary, res.Load, res.Inference.Corpus, res.Inference, res.Verdicts, res.start); err != nil {
		return nil, err
	}
	if err := r.publishMetrics(ctx, res.RunID); err != nil {
		return nil, err
	}
	return &res.InferResult, nil
}

// Classify runs inference and classification without writing any output.
// It backs the query command.
func (r *Runner) Classify(ctx context.Context) (*InferResult, error) {
	res, err := r.infer(ctx)
	if err != nil {
		return nil, err
	}
	return &res.InferResult, nil
}

type inferRun struct {
	InferResult
	start time.Time
}

func (r *Runner) infer(ctx context.Context) (*inferRun, error) {
	start := time.Now()
	runID := uuid.New()

	opts, err := r.cfg.InferenceOptions()
	if err != nil {
		return nil, err
	}
	logger := r.logger.With(logging.RunID(runID.String()), logging.Variant(opts.Variant.String()))

	c, stats, err := r.loadCorpus(ctx, logger, nil)
	if err != nil {
		r.metrics.RecordRun(opts.Variant.String(), statusError, time.Since(start))
		return nil, err
	}

	obs, stop := r.observers(logger)
	opts.Observer = obs

	inf, err := asrel.Infer(ctx, c, opts)
	var verdicts []asrel.Verdict
	if err == nil {
		verdicts, err = inf.Classify(ctx)
	}
	stop()
	if err != nil {
		r.metrics.RecordRun(opts.Variant.String(), statusError, time.Since(start))
		logger.Error("inference failed", logging.Error(err))
		return nil, fmt.Errorf("inference: %w", err)
	}

	summary := report.InferenceSummary(inf, verdicts)
	r.metrics.RecordInference(inf)
	r.metrics.RecordRun(opts.Variant.String(), statusSuccess, time.Since(start))
	logger.Info("inference finished",
		logging.Int("paths", c.Len()),
		logging.Int("edges", inf.Relationships.Len()),
		logging.Int("promoted", inf.Promoted),
		logging.Int("not_valley_free", summary.NotValleyFree),
		logging.Latency(time.Since(start)))

	return &inferRun{
		InferResult: InferResult{RunID: runID, Load: stats, Inference: inf, Verdicts: verdicts, Summary: summary},
		start:       start,
	}, nil
}

// Validate classifies the configured corpus against the ground-truth table.
// Lines that fail to parse are reported on standard error and skipped.
func (r *Runner) Validate(ctx context.Context) (*ValidateResult, error) {
	if r.cfg.GroundTruth.Path == "" {
		return nil, ErrNoGroundTruth
	}
	start := time.Now()
	runID := uuid.New()
	logger := r.logger.With(logging.RunID(runID.String()), logging.String("mode", string(report.ModeGroundTruth)))

	gt, err := r.loadGroundTruth(ctx, logger)
	if err != nil {
		r.metrics.RecordRun(string(report.ModeGroundTruth), statusError, time.Since(start))
		return nil, err
	}

	c, stats, err := r.loadCorpus(ctx, logger, func(perr *asrel.ParseError) {
		fmt.Fprintf(r.stderr, "Error parsing line %d path: %s\n", perr.Line-1, perr.Text)
	})
	if err != nil {
		r.metrics.RecordRun(string(report.ModeGroundTruth), statusError, time.Since(start))
		return nil, err
	}

	obs, stop := r.observers(logger)
	verdicts, err := asrel.ClassifyCorpus(ctx, c, gt, r.cfg.Inference.Workers, obs)
	stop()
	if err != nil {
		r.metrics.RecordRun(string(report.ModeGroundTruth), statusError, time.Since(start))
		return nil, fmt.Errorf("classify: %w", err)
	}

	summary := report.GroundTruthSummary(verdicts, stats.Lines)
	if err := r.writeResults(c, verdicts); err != nil {
		return nil, err
	}
	if err := r.writeStats(summary); err != nil {
		return nil, err
	}

	r.metrics.RecordVerdicts(string(report.ModeGroundTruth), verdicts)
	r.metrics.RecordRun(string(report.ModeGroundTruth), statusSuccess, time.Since(start))
	logger.Info("validation finished",
		logging.Int("paths", c.Len()),
		logging.Int("pairs", gt.Len()),
		logging.Int("not_valley_free", summary.NotValleyFree),
		logging.Latency(time.Since(start)))

	if err := r.export(ctx, logger, runID, report.ModeGroundTruth, summary, stats, c, nil, verdicts, start); err != nil {
		return nil, err
	}
	if err := r.publishMetrics(ctx, runID); err != nil {
		return nil, err
	}
	return &ValidateResult{RunID: runID, Load: stats, GroundTruth: gt, Verdicts: verdicts, Summary: summary}, nil
}

func (r *Runner) loadGroundTruth(ctx context.Context, logger logging.Logger) (*asrel.GroundTruthGraph, error) {
	path := r.cfg.GroundTruth.Path
	timer := logging.StartTimer(logger, "ground truth loaded", logging.Source(path))

	rc, err := corpus.Open(ctx, path, r.source)
	if err != nil {
		timer.EndError(err)
		return nil, fmt.Errorf("open ground truth: %w", err)
	}
	defer rc.Close()

	gt, err := asrel.LoadGroundTruth(rc, asrel.GroundTruthOptions{
		Source:       corpus.DisplayName(path),
		NumericASNs:  r.cfg.Corpus.NumericASNs,
		MaxLineBytes: r.cfg.Corpus.MaxLineBytes,
	})
	if err != nil {
		timer.EndError(err)
		return nil, err
	}
	timer.End(logging.Count(gt.Len()))
	return gt, nil
}

func (r *Runner) writeResults(c *asrel.Corpus, verdicts []asrel.Verdict) error {
	path := r.cfg.Output.Results
	if path == "" || path == "-" {
		return report.WriteResults(r.stdout, c, verdicts)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	if err := report.WriteResults(f, c, verdicts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (r *Runner) writeStats(s report.Summary) error {
	if r.cfg.Output.PrettyStats {
		return report.WritePretty(r.stderr, s)
	}
	return report.WriteStats(r.stderr, s)
}

func (r *Runner) export(ctx context.Context, logger logging.Logger, runID uuid.UUID, mode report.Mode, s report.Summary,
	load corpus.LoadStats, c *asrel.Corpus, inf *asrel.Inference, verdicts []asrel.Verdict, start time.Time) error {
	dsn := r.cfg.Export.PostgresDSN
	if dsn == "" {
		return nil
	}

	timer := logging.StartTimer(logger, "run exported")
	store, err := r.openStore(ctx, dsn)
	if err != nil {
		timer.EndError(err)
		return fmt.Errorf("open results database: %w", err)
	}
	defer store.Close()

	rec := export.RunRecord{
		ID:            runID,
		Mode:          string(mode),
		Source:        corpus.DisplayName(r.cfg.Corpus.Input),
		CorpusDigest:  load.Digest,
		Paths:         c.Len(),
		ASes:          c.NodeCount(),
		NotValleyFree: s.NotValleyFree,
		StartedAt:     start.UTC(),
		FinishedAt:    time.Now().UTC(),
	}
	if inf != nil {
		rec.Variant = inf.Variant.String()
		rec.TransitThreshold = r.cfg.Inference.TransitThreshold
		rec.PeeringRatio = r.cfg.Inference.PeeringRatio
		rec.Links = inf.Neighbors.LinkCount()
		rec.Promoted = inf.Promoted
	}

	written, err := store.SaveRun(ctx, export.Run{Record: rec, Corpus: c, Inference: inf, Verdicts: verdicts})
	if err != nil {
		timer.EndError(err)
		return fmt.Errorf("export run: %w", err)
	}
	r.metrics.RecordExport(written, timer.End(logging.Int("verdicts", written[export.TableVerdicts])))
	return nil
}

func (r *Runner) publishMetrics(ctx context.Context, runID uuid.UUID) error {
	m := r.cfg.Metrics
	if m.Textfile == "" && m.Pushgateway == "" {
		return nil
	}
	r.metrics.UpdateSystemMetrics()

	if m.Textfile != "" {
		if err := r.metrics.WriteTextfile(m.Textfile); err != nil {
			return err
		}
	}
	if m.Pushgateway != "" {
		var header http.Header
		if m.PushSecret != "" {
			signer, err := auth.NewJWTManager(m.PushSecret, auth.DefaultTokenDuration)
			if err != nil {
				return fmt.Errorf("push token: %w", err)
			}
			if header, err = signer.BearerHeader(m.Job, runID.String()); err != nil {
				return fmt.Errorf("push token: %w", err)
			}
		}
		if err := r.metrics.Push(ctx, m.Pushgateway, m.Job, runID.String(), header); err != nil {
			return err
		}
	}
	return nil
}
