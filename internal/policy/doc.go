// Package policy defines the data model for a reproducible-build policy:
// the alias table, the vendor source switch, the lint rule set, and the
// pipeline stage list.
//
// All values are produced at configuration-load time and held read-only
// for the lifetime of one invocation. Nothing in this package spawns a
// process or touches the network; the only filesystem access is the
// read-only vendor directory check.
package policy
