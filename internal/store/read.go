package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/keelbuild/keel/internal/pipeline"
)

// RunSummary is one row of the history listing.
type RunSummary struct {
	RunToken    string `json:"run_token"`
	PolicyHash  string `json:"policy_hash"`
	Event       string `json:"event"`
	Outcome     string `json:"outcome"`
	FailedStage string `json:"failed_stage,omitempty"`
	ExitInfo    string `json:"exit_info,omitempty"`
	RecordedAt  string `json:"recorded_at"`
}

// ListFilter narrows the history listing. Zero value lists everything.
type ListFilter struct {
	// FailedOnly restricts the listing to failed runs.
	FailedOnly bool

	// Event restricts to one trigger event when non-empty.
	Event string

	// Limit caps the number of rows; 0 means no cap.
	Limit int
}

// ListRuns returns run summaries, newest first (UUIDv7 run tokens sort
// by creation time, and recorded_at breaks ties).
//
// Returns an empty slice (not nil) when no runs match.
func (s *Store) ListRuns(ctx context.Context, filter ListFilter) ([]RunSummary, error) {
	query := `
		SELECT run_token, policy_hash, event, outcome, failed_stage, exit_info, recorded_at
		FROM runs
	`
	var args []any
	var conds []string

	if filter.FailedOnly {
		conds = append(conds, "outcome = 'failed'")
	}
	if filter.Event != "" {
		conds = append(conds, "event = ?")
		args = append(args, filter.Event)
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY run_token DESC, recorded_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var r RunSummary
		var failedStage, exitInfo sql.NullString
		if err := rows.Scan(&r.RunToken, &r.PolicyHash, &r.Event, &r.Outcome, &failedStage, &exitInfo, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.FailedStage = failedStage.String
		r.ExitInfo = exitInfo.String
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run's summary and its stage outcomes in ordinal
// order, or sql.ErrNoRows when the token is unknown.
func (s *Store) GetRun(ctx context.Context, runToken string) (*RunSummary, []pipeline.StageOutcome, error) {
	var r RunSummary
	var failedStage, exitInfo sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT run_token, policy_hash, event, outcome, failed_stage, exit_info, recorded_at
		FROM runs
		WHERE run_token = ?
	`, runToken).Scan(&r.RunToken, &r.PolicyHash, &r.Event, &r.Outcome, &failedStage, &exitInfo, &r.RecordedAt)
	if err != nil {
		return nil, nil, err
	}
	r.FailedStage = failedStage.String
	r.ExitInfo = exitInfo.String

	rows, err := s.db.QueryContext(ctx, `
		SELECT ordinal, name, seq, status, exit_code, stdout, stderr, reason
		FROM stage_results
		WHERE run_token = ?
		ORDER BY ordinal ASC
	`, runToken)
	if err != nil {
		return nil, nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	stages := []pipeline.StageOutcome{}
	for rows.Next() {
		var st pipeline.StageOutcome
		var status string
		if err := rows.Scan(&st.Ordinal, &st.Name, &st.Seq, &status, &st.ExitCode, &st.Stdout, &st.Stderr, &st.Reason); err != nil {
			return nil, nil, fmt.Errorf("scan stage: %w", err)
		}
		st.Status = pipeline.StageStatus(status)
		stages = append(stages, st)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate stages: %w", err)
	}

	return &r, stages, nil
}
