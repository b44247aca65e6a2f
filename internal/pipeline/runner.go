package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/keelbuild/keel/internal/policy"
)

// CI trigger events. The pipeline runs the same fixed stage sequence
// for both; the event is recorded for attribution only.
const (
	EventPush         = "push"
	EventMergeRequest = "merge-request"
	EventManual       = "manual"
)

// ValidEvents defines the allowed trigger events.
var ValidEvents = map[string]bool{
	EventPush:         true,
	EventMergeRequest: true,
	EventManual:       true,
}

// Runner sequences the pipeline stages of a policy.
//
// The runner is single-threaded and strictly sequential: stages never
// overlap, and each stage's subprocess receives the same static
// configuration (resolved argv, lint flags, vendor override). All run
// state lives in the returned PipelineResult; the runner itself holds
// only collaborators and is reusable across runs.
type Runner struct {
	Executor StageExecutor
	TokenGen RunTokenGenerator
	Clock    *Clock
	Env      policy.EnvConfig
}

// NewRunner creates a runner with the production executor and UUIDv7
// run tokens.
func NewRunner(env policy.EnvConfig) *Runner {
	return &Runner{
		Executor: &ProcessExecutor{},
		TokenGen: UUIDv7Generator{},
		Clock:    NewClock(),
		Env:      env,
	}
}

// Run executes the policy's stages in ordinal order.
//
// State machine: Pending → Running(0); Running(i) → Running(i+1) iff
// stage i exits 0; Running(i) → StageFailed(i) on non-zero exit,
// launch failure, resolution failure, or cancellation. Failure is
// terminal: no further stage runs. Running(last) → Succeeded.
//
// The vendor directory check happens first, before any subprocess is
// spawned; its failure is returned as an error rather than a result.
// Stage failures are not errors: they are reported in the result so
// the caller can render the per-stage log.
func (r *Runner) Run(ctx context.Context, p *policy.Policy, event string) (*PipelineResult, error) {
	if len(p.Stages) == 0 {
		return nil, &policy.ConfigurationError{
			Field:   "pipeline.stages",
			Message: "no stages configured",
		}
	}

	// Frozen/offline guarantee: a missing vendor entry fails resolution
	// before compilation begins.
	if err := p.Vendor.Check(); err != nil {
		return nil, err
	}

	hash, err := policy.Fingerprint(p)
	if err != nil {
		return nil, err
	}

	lints, _ := policy.EffectivePolicy(p.Lints)

	result := &PipelineResult{
		RunToken:   r.TokenGen.Generate(),
		PolicyHash: hash,
		Event:      event,
		Outcome:    OutcomeSucceeded,
		Stages:     make([]StageOutcome, 0, len(p.Stages)),
	}

	for _, stage := range p.Stages {
		if result.Failed() {
			result.Stages = append(result.Stages, StageOutcome{
				Name:    stage.Name,
				Ordinal: stage.Ordinal,
				Seq:     r.Clock.Next(),
				Status:  StageSkipped,
			})
			continue
		}

		outcome := r.runStage(ctx, p, lints, stage)
		result.Stages = append(result.Stages, outcome)

		if outcome.Status == StageFailed {
			result.Outcome = OutcomeFailed
			result.FailedStage = stage.Name
			if outcome.Reason != "" {
				result.ExitInfo = outcome.Reason
			} else {
				result.ExitInfo = fmt.Sprintf("exit code %d", outcome.ExitCode)
			}
		}
	}

	return result, nil
}

func (r *Runner) runStage(ctx context.Context, p *policy.Policy, lints *policy.EffectiveLints, stage policy.PipelineStage) StageOutcome {
	outcome := StageOutcome{
		Name:    stage.Name,
		Ordinal: stage.Ordinal,
		Seq:     r.Clock.Next(),
	}

	argv, err := stageArgv(p, lints, stage)
	if err != nil {
		outcome.Status = StageFailed
		outcome.Reason = (&StageError{
			Code: ErrCodeResolution, Stage: stage.Name,
			Message: "alias resolution failed", Err: err,
		}).Error()
		return outcome
	}
	outcome.Argv = argv

	slog.Debug("stage starting", "stage", stage.Name, "argv", argv)

	res, err := r.Executor.Execute(ctx, argv)
	if err != nil {
		code := ErrCodeLaunchFailed
		message := "could not launch stage command"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			code = ErrCodeCancelled
			message = "run interrupted"
		}
		outcome.Status = StageFailed
		outcome.Reason = (&StageError{
			Code: code, Stage: stage.Name, Message: message, Err: err,
		}).Error()
		return outcome
	}

	outcome.ExitCode = res.ExitCode
	outcome.Stdout = string(res.Stdout)
	outcome.Stderr = string(res.Stderr)

	if res.ExitCode != 0 {
		outcome.Status = StageFailed
	} else {
		outcome.Status = StageSucceeded
	}

	slog.Debug("stage finished", "stage", stage.Name, "status", outcome.Status, "exit_code", outcome.ExitCode)
	return outcome
}

// stageArgv builds the full command line for a stage: the toolchain
// binary, the resolved alias tokens, and the effective lint flags for
// stages that compile.
func stageArgv(p *policy.Policy, lints *policy.EffectiveLints, stage policy.PipelineStage) ([]string, error) {
	tokens, err := p.Aliases.Resolve(stage.Alias)
	if err != nil {
		return nil, err
	}

	argv := make([]string, 0, 1+len(tokens)+lints.Len())
	argv = append(argv, p.Toolchain)
	argv = append(argv, tokens...)
	if stage.InjectLints {
		argv = append(argv, lints.Flags()...)
	}
	return argv, nil
}
