package pipeline

import "fmt"

// toolError is a non-zero exit (or spawn failure) from the quantizer or
// compiler. Fatal for the run: these failures are expensive and
// deterministic, so nothing retries them.
type toolError struct {
	tool   string
	exit   int
	output string
	err    error
}

func (e toolError) Error() string {
	msg := fmt.Sprintf("%s failed (exit %d): %v", e.tool, e.exit, e.err)
	if e.output != "" {
		msg += "\n--- tool output tail ---\n" + e.output
	}
	return msg
}

func (e toolError) Unwrap() error { return e.err }

// IsToolFailure reports whether err is an external tool failure.
func IsToolFailure(err error) bool {
	_, ok := err.(toolError)
	return ok
}

// lockHeldError means another invocation holds the build lock.
type lockHeldError struct {
	path string
	pid  int
}

func (e lockHeldError) Error() string {
	return fmt.Sprintf("build lock %s held by pid %d; refusing to run two builds at once", e.path, e.pid)
}

// IsLockHeld reports whether err means a concurrent build owns the lock.
func IsLockHeld(err error) bool {
	_, ok := err.(lockHeldError)
	return ok
}
