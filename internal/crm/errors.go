package crm

import "errors"

var (
	// ErrAuth is returned when an access token cannot be obtained.
	ErrAuth = errors.New("crm authentication failed")

	// ErrQuery is returned when a select query or related-record search fails,
	// including when the circuit breaker rejects the call.
	ErrQuery = errors.New("crm query failed")
)
