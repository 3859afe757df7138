package remote

// transientError wraps a failure worth retrying: network errors and
// server-side 5xx responses. A 404 is not transient.
type transientError struct{ err error }

func (e transientError) Error() string { return "transient: " + e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Transient marks err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err: err}
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	_, ok := err.(transientError)
	return ok
}

// unavailableError is a transient failure that survived every retry attempt.
type unavailableError struct {
	op   string
	last error
}

func (e unavailableError) Error() string {
	return "remote unavailable after retries (" + e.op + "): " + e.last.Error()
}
func (e unavailableError) Unwrap() error { return e.last }

// IsUnavailable reports whether err means the remote store could not be
// reached at all. The pipeline degrades to a local build on it.
func IsUnavailable(err error) bool {
	_, ok := err.(unavailableError)
	return ok
}
