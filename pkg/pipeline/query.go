package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/thalespaiva/bgphijack/pkg/graphql"
	"github.com/thalespaiva/bgphijack/pkg/logging"
)

// ErrQueryFailed is returned when the GraphQL response carries errors.
var ErrQueryFailed = errors.New("query returned errors")

// Query runs inference over the configured corpus and answers one GraphQL
// query against the result. The JSON response is written to standard output
// even when it carries errors.
func (r *Runner) Query(ctx context.Context, query string, variables map[string]any, limits graphql.LimitConfig) error {
	res, err := r.Classify(ctx)
	if err != nil {
		return err
	}

	server, err := graphql.NewServer(graphql.Run{
		ID:        res.RunID.String(),
		Inference: res.Inference,
		Verdicts:  res.Verdicts,
	}, limits)
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}

	timer := logging.StartTimer(r.logger, "query executed", logging.RunID(res.RunID.String()))
	result := server.Execute(ctx, query, variables)
	timer.End(logging.Int("errors", len(result.Errors)))

	enc := json.NewEncoder(r.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%w: %s", ErrQueryFailed, result.Errors[0].Message)
	}
	return nil
}
