package engine

import "time"

// Hardcoded fallbacks used when no configuration is supplied. Absent
// config falls back here, never to "unlimited".
const (
	DefaultMaxRepeat = 100
	DefaultTimeout   = 30 * time.Second
)

// Limits is the safety envelope: the repeat-count and wall-clock bounds
// that prevent runaway automation. Zero values mean "use the hardcoded
// default", not "no limit".
type Limits struct {
	MaxRepeat int
	Timeout   time.Duration
}

// ResolveMaxRepeat returns the effective repeat ceiling: the per-macro
// override wins when present, else the global value, else the default.
func ResolveMaxRepeat(global, override int) int {
	if override > 0 {
		return override
	}
	if global > 0 {
		return global
	}
	return DefaultMaxRepeat
}

// ResolveTimeout returns the effective wall-clock ceiling with the same
// override rule as ResolveMaxRepeat.
func ResolveTimeout(global, override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	if global > 0 {
		return global
	}
	return DefaultTimeout
}
