package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/thalespaiva/bgphijack/pkg/asrel"
)

// Mode names the relationship source of a run.
type Mode string

const (
	ModeInferred    Mode = "inferred"
	ModeGroundTruth Mode = "ground_truth"
)

// RelationshipCount is one line of the relationship breakdown.
type RelationshipCount struct {
	Relationship asrel.Relationship
	Count        int
	Total        int
}

// Ratio returns Count/Total, 0 for an empty table.
func (r RelationshipCount) Ratio() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Count) / float64(r.Total)
}

// Summary holds everything printed on the diagnostic stream after a run.
type Summary struct {
	Mode          Mode
	Variant       string // inferred mode only
	Total         int    // paths classified, or lines read in ground-truth mode
	NotValleyFree int
	Relationships []RelationshipCount // relationships present, in reporting order
}

// NotValleyFreeRatio returns NotValleyFree/Total, 0 when nothing was read.
func (s Summary) NotValleyFreeRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.NotValleyFree) / float64(s.Total)
}

// CountRed returns the number of Red verdicts.
func CountRed(verdicts []asrel.Verdict) int {
	n := 0
	for _, v := range verdicts {
		if v == asrel.Red {
			n++
		}
	}
	return n
}

// InferenceSummary summarizes an inference run.
func InferenceSummary(inf *asrel.Inference, verdicts []asrel.Verdict) Summary {
	s := Summary{
		Mode:          ModeInferred,
		Variant:       inf.Variant.String(),
		Total:         len(verdicts),
		NotValleyFree: CountRed(verdicts),
	}

	counts := inf.Relationships.Counts()
	total := inf.Relationships.Len()
	for _, rel := range asrel.Relationships {
		if counts[rel] == 0 {
			continue
		}
		s.Relationships = append(s.Relationships, RelationshipCount{Relationship: rel, Count: counts[rel], Total: total})
	}
	return s
}

// GroundTruthSummary summarizes a ground-truth run. lines counts every input
// line, including the ones that failed to parse.
func GroundTruthSummary(verdicts []asrel.Verdict, lines int) Summary {
	return Summary{
		Mode:          ModeGroundTruth,
		Total:         lines,
		NotValleyFree: CountRed(verdicts),
	}
}

// FormatRatio prints a ratio the way the diagnostics always have: shortest
// round-trip form, with a trailing ".0" on whole numbers.
func FormatRatio(r float64) string {
	s := strconv.FormatFloat(r, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// WriteResults writes one "path,VERDICT" line per corpus path, in order.
func WriteResults(w io.Writer, c *asrel.Corpus, verdicts []asrel.Verdict) error {
	if len(verdicts) != c.Len() {
		return fmt.Errorf("have %d verdicts for %d paths", len(verdicts), c.Len())
	}

	bw := bufio.NewWriter(w)
	for i, v := range verdicts {
		bw.WriteString(c.String(i))
		bw.WriteByte(',')
		bw.WriteString(v.String())
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// WriteStats writes the plain-text diagnostics.
func WriteStats(w io.Writer, s Summary) error {
	var b strings.Builder
	switch s.Mode {
	case ModeGroundTruth:
		fmt.Fprintf(&b, "Not VF: %d/%d = %s\n", s.NotValleyFree, s.Total, FormatRatio(s.NotValleyFreeRatio()))
	default:
		fmt.Fprintf(&b, "Not vf: %d\n", s.NotValleyFree)
		for _, rc := range s.Relationships {
			fmt.Fprintf(&b, "%s: %d/%d = %s\n", rc.Relationship, rc.Count, rc.Total, FormatRatio(rc.Ratio()))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
