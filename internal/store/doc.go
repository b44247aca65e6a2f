// Package store provides durable run history for keel pipelines.
//
// History is optional: the pipeline itself keeps no state across
// invocations, but operators can record each run's per-stage outcomes
// to a SQLite database for later inspection with `keel history`.
package store
