// Package pipeline executes the fixed, ordered stage list of a CI run.
//
// Stages run strictly sequentially, one subprocess per stage, with
// stdout and stderr captured per stage. A stage failure is terminal:
// no later stage runs, and the failing stage is named in the result.
// There are no retries and no timeouts; cancellation of the run
// context kills the in-flight process group and fails the running
// stage with a cancellation reason.
package pipeline
