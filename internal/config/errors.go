package config

// missingParamError names a required parameter that is unset. It is raised
// before any expensive work so the operator sees the parameter, not a
// generic failure.
type missingParamError struct{ param string }

func (e missingParamError) Error() string { return "required parameter unset: " + e.param }

func errMissingParam(param string) error { return missingParamError{param: param} }

// badValueError names a parameter whose value is outside the accepted set.
type badValueError struct{ param, value, want string }

func (e badValueError) Error() string {
	return "invalid value for " + e.param + ": " + e.value + " (want " + e.want + ")"
}

// IsConfigError reports whether err is a configuration error (missing or
// invalid tracked parameter).
func IsConfigError(err error) bool {
	switch err.(type) {
	case missingParamError, badValueError:
		return true
	}
	return false
}
