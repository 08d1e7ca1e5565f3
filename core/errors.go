package core

import (
	"errors"
	"fmt"
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password") // 401 Unauthorized
	ErrInvalidSession     = errors.New("invalid or expired session")   // 401 Unauthorized
)

// Validation errors (client input)
var (
	ErrUsernameRequired   = errors.New("username is required")    // 400
	ErrPasswordRequired   = errors.New("password is required")    // 400
	ErrIncidentIDRequired = errors.New("incident ID is required") // 400
	ErrDocumentIDRequired = errors.New("document ID is required") // 400
)

// Config errors (server-side configuration)
var (
	ErrUpstreamCredentialsMissing = errors.New("missing upstream API credentials") // 500
	ErrAuthNotConfigured          = errors.New("auth credentials not configured")  // 500
	ErrSecretRequired             = errors.New("session secret is required")       // 500
)

// Cache errors
var (
	ErrNotCached = errors.New("no cached extraction for incident")
)

// UpstreamError carries the status code and raw body of a failed upstream
// call so handlers can surface them without retrying.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}
