package tripledes

import "github.com/coinbase/cb-prf-go/pkg/prf/logging"

// Config expresses the optional knobs of an Engine. The zero value is valid.
type Config struct {
	// Logger receives construction-time diagnostics. Nil discards them.
	// Compute and Invert never log.
	Logger logging.Logger

	// LockMemory places the key schedules in a dedicated mapping locked into
	// RAM where the platform allows it. When locking is refused (for example
	// by RLIMIT_MEMLOCK) the engine still works from heap memory and a
	// warning is logged.
	LockMemory bool
}
