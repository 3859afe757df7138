package types

// ListResponse wraps a store listing returned by GET /v1/list/{prefix}.
type ListResponse struct {
	// Files under the requested prefix, relative to the store root.
	Files []RemoteFile `json:"files"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	Error string `json:"error"`
	// HTTP status code.
	Code int `json:"code"`
}
