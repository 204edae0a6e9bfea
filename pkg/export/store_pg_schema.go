package export

import "context"

// migrate creates the result tables
func (s *PGStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS asrel_runs (
		id UUID PRIMARY KEY,
		mode TEXT NOT NULL,
		variant TEXT,
		transit_threshold INTEGER,
		peering_ratio DOUBLE PRECISION,
		source TEXT NOT NULL,
		corpus_digest TEXT,
		paths INTEGER NOT NULL,
		ases INTEGER NOT NULL,
		links INTEGER NOT NULL,
		not_valley_free INTEGER NOT NULL,
		promoted INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS asrel_relationships (
		run_id UUID NOT NULL REFERENCES asrel_runs(id) ON DELETE CASCADE,
		from_asn TEXT NOT NULL,
		to_asn TEXT NOT NULL,
		relationship TEXT NOT NULL,
		PRIMARY KEY (run_id, from_asn, to_asn)
	);

	CREATE TABLE IF NOT EXISTS asrel_verdicts (
		run_id UUID NOT NULL REFERENCES asrel_runs(id) ON DELETE CASCADE,
		path_index INTEGER NOT NULL,
		path TEXT NOT NULL,
		verdict TEXT NOT NULL,
		PRIMARY KEY (run_id, path_index)
	);

	CREATE INDEX IF NOT EXISTS idx_asrel_runs_started_at ON asrel_runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_asrel_runs_corpus_digest ON asrel_runs(corpus_digest);
	CREATE INDEX IF NOT EXISTS idx_asrel_relationships_from ON asrel_relationships(from_asn);
	CREATE INDEX IF NOT EXISTS idx_asrel_verdicts_verdict ON asrel_verdicts(run_id, verdict);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}
