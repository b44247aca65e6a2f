package store

import (
	"context"
	"fmt"

	"github.com/keelbuild/keel/internal/pipeline"
)

// RecordRun inserts a completed pipeline run and its per-stage outcomes
// in one transaction. Runs are only recorded whole, after reaching a
// terminal state; the history never contains partial runs.
//
// Uses ON CONFLICT DO NOTHING on the run token for idempotency, so
// re-recording the same result is a no-op.
func (s *Store) RecordRun(ctx context.Context, result *pipeline.PipelineResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (run_token, policy_hash, event, outcome, failed_stage, exit_info)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_token) DO NOTHING
	`,
		result.RunToken,
		result.PolicyHash,
		result.Event,
		string(result.Outcome),
		result.FailedStage,
		result.ExitInfo,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	// Duplicate token: stages were written with the original record.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tx.Commit()
	}

	for _, stage := range result.Stages {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stage_results (run_token, ordinal, name, seq, status, exit_code, stdout, stderr, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			result.RunToken,
			stage.Ordinal,
			stage.Name,
			stage.Seq,
			string(stage.Status),
			stage.ExitCode,
			stage.Stdout,
			stage.Stderr,
			stage.Reason,
		)
		if err != nil {
			return fmt.Errorf("record stage %q: %w", stage.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run: commit: %w", err)
	}
	return nil
}
