package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrRunNotFound is returned by GetRun for an unknown run ID
var ErrRunNotFound = errors.New("run not found")

// SaveRun writes the run record, its relationships and its verdicts in one
// transaction. It returns the number of rows written per table.
func (s *PGStore) SaveRun(ctx context.Context, run Run) (map[string]int, error) {
	if len(run.Verdicts) != run.Corpus.Len() {
		return nil, fmt.Errorf("have %d verdicts for %d paths", len(run.Verdicts), run.Corpus.Len())
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rec := run.Record
	query := `
		INSERT INTO asrel_runs (id, mode, variant, transit_threshold, peering_ratio, source,
			corpus_digest, paths, ases, links, not_valley_free, promoted, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = tx.Exec(ctx, query,
		rec.ID,
		rec.Mode,
		nullable(rec.Variant),
		rec.TransitThreshold,
		rec.PeeringRatio,
		rec.Source,
		nullable(rec.CorpusDigest),
		rec.Paths,
		rec.ASes,
		rec.Links,
		rec.NotValleyFree,
		rec.Promoted,
		rec.StartedAt,
		rec.FinishedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	written := map[string]int{TableRuns: 1}

	rels := RelationshipRows(rec.ID, run.Inference)
	if len(rels) > 0 {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{TableRelationships}, relationshipColumns, pgx.CopyFromRows(rels))
		if err != nil {
			return nil, fmt.Errorf("failed to copy relationships: %w", err)
		}
		written[TableRelationships] = int(n)
	}

	verdicts := VerdictRows(rec.ID, run.Corpus, run.Verdicts)
	if len(verdicts) > 0 {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{TableVerdicts}, verdictColumns, pgx.CopyFromRows(verdicts))
		if err != nil {
			return nil, fmt.Errorf("failed to copy verdicts: %w", err)
		}
		written[TableVerdicts] = int(n)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return written, nil
}

// GetRun retrieves a run record by ID
func (s *PGStore) GetRun(ctx context.Context, id uuid.UUID) (*RunRecord, error) {
	query := `
		SELECT id, mode, COALESCE(variant, ''), COALESCE(transit_threshold, 0), COALESCE(peering_ratio, 0),
			source, COALESCE(corpus_digest, ''), paths, ases, links, not_valley_free, promoted, started_at, finished_at
		FROM asrel_runs
		WHERE id = $1
	`

	rec := &RunRecord{}
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.Mode,
		&rec.Variant,
		&rec.TransitThreshold,
		&rec.PeeringRatio,
		&rec.Source,
		&rec.CorpusDigest,
		&rec.Paths,
		&rec.ASes,
		&rec.Links,
		&rec.NotValleyFree,
		&rec.Promoted,
		&rec.StartedAt,
		&rec.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return rec, nil
}

// CountVerdicts returns the number of stored verdicts of a run with the given value
func (s *PGStore) CountVerdicts(ctx context.Context, id uuid.UUID, verdict string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM asrel_verdicts WHERE run_id = $1 AND verdict = $2`, id, verdict).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count verdicts: %w", err)
	}
	return n, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
