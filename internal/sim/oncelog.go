package sim

import "log/slog"

// OnceLogger emits at most one warning over its lifetime. Each component
// that needs to complain about a repeating condition owns its own.
type OnceLogger struct {
	logger *slog.Logger
	logged bool
}

// NewOnceLogger wraps logger; nil uses slog.Default().
func NewOnceLogger(logger *slog.Logger) *OnceLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnceLogger{logger: logger}
}

// Warn logs msg unless a warning was already logged. It reports whether it
// wrote anything.
func (o *OnceLogger) Warn(msg string, args ...any) bool {
	if o.logged {
		return false
	}
	o.logger.Warn(msg, args...)
	o.logged = true
	return true
}

// Logged reports whether the warning has been spent.
func (o *OnceLogger) Logged() bool { return o.logged }
