package policy

import "strings"

// Environment variable names for process-wide diagnostic flags. Both
// are inert with respect to pipeline outcome; they affect only
// diagnostic verbosity.
const (
	// EnvBacktrace expands failure error chains fully in diagnostic
	// output when truthy.
	EnvBacktrace = "KEEL_BACKTRACE"

	// EnvForceColor forces ANSI coloring regardless of output stream
	// type when truthy.
	EnvForceColor = "KEEL_FORCE_COLOR"
)

// EnvConfig captures the process-wide environment flags. It is read
// once at process start and passed explicitly, never consulted as
// ambient global state, so tests can inject arbitrary combinations.
type EnvConfig struct {
	Backtrace  bool
	ForceColor bool
}

// LookupFunc matches os.LookupEnv, injectable for tests.
type LookupFunc func(key string) (string, bool)

// EnvFromLookup builds the EnvConfig from an environment lookup.
func EnvFromLookup(lookup LookupFunc) EnvConfig {
	return EnvConfig{
		Backtrace:  truthy(lookup, EnvBacktrace),
		ForceColor: truthy(lookup, EnvForceColor),
	}
}

func truthy(lookup LookupFunc, key string) bool {
	val, ok := lookup(key)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
