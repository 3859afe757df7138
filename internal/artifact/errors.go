package artifact

// missingError names a required file absent from an artifact directory.
type missingError struct{ dir, file string }

func (e missingError) Error() string { return "artifact " + e.dir + ": missing required file " + e.file }

// IsMissing reports whether err indicates an absent required file. Callers
// treat this as a cache miss, not a crash.
func IsMissing(err error) bool {
	_, ok := err.(missingError)
	return ok
}

// incompatibleError names an architecture mismatch between an artifact and
// the probed accelerator.
type incompatibleError struct{ dir, built, current, source string }

func (e incompatibleError) Error() string {
	return "artifact " + e.dir + ": built for compute cap " + e.built +
		" but current accelerator is " + e.current + " (" + e.source + ")"
}

// IsIncompatible reports whether err indicates an architecture mismatch.
func IsIncompatible(err error) bool {
	_, ok := err.(incompatibleError)
	return ok
}
