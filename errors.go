package reducescatter

import "errors"

// Error taxonomy, per the CORE's error-handling design: every internal
// call is checked, the first non-success status wins, and the caller
// sees one of these sentinels (use errors.Is to test).
var (
	// ErrOutOfResource means a scratch allocation or datatype handle
	// allocation failed.
	ErrOutOfResource = errors.New("reducescatter: out of resource")

	// ErrDatatypeError means indexed pattern construction or commit
	// rejected its parameters.
	ErrDatatypeError = errors.New("reducescatter: datatype error")

	// ErrTransportError means a send, receive, or wait failed.
	ErrTransportError = errors.New("reducescatter: transport error")

	// ErrOperatorError means a caller-supplied operator invocation
	// reported failure.
	ErrOperatorError = errors.New("reducescatter: operator error")
)
