// Package harness provides a conformance testing framework for keel
// pipeline runs.
//
// Scenarios are YAML files that name a policy directory, a trigger
// event, and the expected per-stage outcomes. The harness compiles the
// policy, executes the pipeline with a fixed run token and a fresh
// logical clock, and evaluates the scenario's assertions against the
// resulting run report.
//
// Because run tokens and stage sequence numbers are deterministic, a
// run report can also be compared against a golden file. Golden files
// live in testdata/golden and use canonical JSON, so byte comparison is
// stable across platforms. To regenerate them:
//
//	go test ./internal/harness -update
//
// The harness spawns real subprocesses, so scenario policies should use
// portable toolchains such as sh rather than cargo.
package harness
