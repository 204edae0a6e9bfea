package export

import (
	"time"

	"github.com/google/uuid"

	"github.com/thalespaiva/bgphijack/pkg/asrel"
)

// Table names, also used as metric labels.
const (
	TableRuns          = "asrel_runs"
	TableRelationships = "asrel_relationships"
	TableVerdicts      = "asrel_verdicts"
)

var (
	relationshipColumns = []string{"run_id", "from_asn", "to_asn", "relationship"}
	verdictColumns      = []string{"run_id", "path_index", "path", "verdict"}
)

// RunRecord is one row of asrel_runs.
type RunRecord struct {
	ID               uuid.UUID
	Mode             string // "inferred" or "ground_truth"
	Variant          string // empty in ground-truth mode
	TransitThreshold int
	PeeringRatio     float64
	Source           string
	CorpusDigest     string // hex BLAKE2b-256 of the raw corpus
	Paths            int
	ASes             int
	Links            int
	NotValleyFree    int
	Promoted         int
	StartedAt        time.Time
	FinishedAt       time.Time
}

// Run is everything SaveRun writes. Inference is nil for ground-truth runs,
// which store verdicts only.
type Run struct {
	Record    RunRecord
	Corpus    *asrel.Corpus
	Inference *asrel.Inference
	Verdicts  []asrel.Verdict
}

// RelationshipRows returns one row per labeled directed edge, in edge key
// order.
func RelationshipRows(runID uuid.UUID, inf *asrel.Inference) [][]any {
	if inf == nil {
		return nil
	}
	edges := inf.Relationships.Edges()
	rows := make([][]any, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, []any{
			runID,
			string(inf.Corpus.ASN(e.From())),
			string(inf.Corpus.ASN(e.To())),
			inf.Relationships.Get(e).String(),
		})
	}
	return rows
}

// VerdictRows returns one row per corpus path, in input order.
func VerdictRows(runID uuid.UUID, c *asrel.Corpus, verdicts []asrel.Verdict) [][]any {
	rows := make([][]any, 0, len(verdicts))
	for i, v := range verdicts {
		rows = append(rows, []any{runID, i, c.String(i), v.String()})
	}
	return rows
}
