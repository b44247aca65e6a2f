// Package config loads and compiles build-policy declarations from CUE
// files into the immutable policy model.
//
// A policy directory holds one or more .cue files with the top-level
// fields toolchain, alias, vendor, lints, and pipeline. Loading is
// strictly a read: the package never spawns a process, and malformed
// declarations fail before any pipeline stage can run.
package config
