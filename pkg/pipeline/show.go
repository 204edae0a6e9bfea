package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thalespaiva/bgphijack/pkg/asrel"
	"github.com/thalespaiva/bgphijack/pkg/export"
	"github.com/thalespaiva/bgphijack/pkg/logging"
)

// ErrNoStore is returned by ShowRun when export.postgres_dsn is not set
var ErrNoStore = errors.New("no export database configured")

// StoredRun is an exported run read back with its verdict counts.
type StoredRun struct {
	Record export.RunRecord
	Green  int
	Red    int
}

// ShowRun reads run id from the export database and prints it as
// "key: value" lines on standard output.
func (r *Runner) ShowRun(ctx context.Context, id uuid.UUID) (*StoredRun, error) {
	dsn := r.cfg.Export.PostgresDSN
	if dsn == "" {
		return nil, ErrNoStore
	}

	timer := logging.StartTimer(r.logger, "run loaded", logging.RunID(id.String()))
	store, err := r.openStore(ctx, dsn)
	if err != nil {
		timer.EndError(err)
		return nil, fmt.Errorf("open export store: %w", err)
	}
	defer store.Close()

	rec, err := store.GetRun(ctx, id)
	if err != nil {
		timer.EndError(err)
		return nil, err
	}
	run := &StoredRun{Record: *rec}
	if run.Green, err = store.CountVerdicts(ctx, id, asrel.Green.String()); err != nil {
		timer.EndError(err)
		return nil, err
	}
	if run.Red, err = store.CountVerdicts(ctx, id, asrel.Red.String()); err != nil {
		timer.EndError(err)
		return nil, err
	}
	timer.End(logging.String("mode", rec.Mode))

	if err := r.writeStoredRun(run); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *Runner) writeStoredRun(run *StoredRun) error {
	rec := run.Record
	lines := []struct {
		key   string
		value any
	}{
		{"run_id", rec.ID},
		{"mode", rec.Mode},
		{"variant", rec.Variant},
		{"source", rec.Source},
		{"corpus_digest", rec.CorpusDigest},
		{"paths", rec.Paths},
		{"ases", rec.ASes},
		{"links", rec.Links},
		{"not_valley_free", rec.NotValleyFree},
		{"promoted", rec.Promoted},
		{"started_at", rec.StartedAt.UTC().Format(time.RFC3339)},
		{"finished_at", rec.FinishedAt.UTC().Format(time.RFC3339)},
		{asrel.Green.String(), run.Green},
		{asrel.Red.String(), run.Red},
	}
	for _, l := range lines {
		if l.value == "" {
			continue
		}
		if _, err := fmt.Fprintf(r.stdout, "%s: %v\n", l.key, l.value); err != nil {
			return fmt.Errorf("write run: %w", err)
		}
	}
	return nil
}
