package runtime

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hasura/ndc-sdk-go/schema"
)

// ErrorKind is the stable machine-readable discriminator carried by every
// error envelope. Kinds are part of the wire contract and must not change
// between releases.
type ErrorKind string

// Kinds produced by the runtime itself.
const (
	KindMalformedRequest          ErrorKind = "malformed_request"
	KindUnsupportedVersion        ErrorKind = "unsupported_version"
	KindPayloadTooLarge           ErrorKind = "payload_too_large"
	KindStateInitializationFailed ErrorKind = "state_initialization_failed"
	KindInternal                  ErrorKind = "internal"
)

// Kinds declared by connector logic and passed through unreinterpreted.
const (
	KindInvalidRequest       ErrorKind = "invalid_request"
	KindUnprocessableContent ErrorKind = "unprocessable_content"
	KindUnsupportedOperation ErrorKind = "unsupported_operation"
	KindConflict             ErrorKind = "conflict"
	KindConstraintNotMet     ErrorKind = "constraint_not_met"
	KindUnhealthy            ErrorKind = "unhealthy"
)

// KindUnauthorized rejects requests missing the configured service token.
const KindUnauthorized ErrorKind = "unauthorized"

var kindStatus = map[ErrorKind]int{
	KindMalformedRequest:          http.StatusBadRequest,
	KindUnsupportedVersion:        http.StatusBadRequest,
	KindPayloadTooLarge:           http.StatusRequestEntityTooLarge,
	KindStateInitializationFailed: http.StatusInternalServerError,
	KindInternal:                  http.StatusInternalServerError,
	KindInvalidRequest:            http.StatusBadRequest,
	KindUnprocessableContent:      http.StatusUnprocessableEntity,
	KindUnsupportedOperation:      http.StatusNotImplemented,
	KindConflict:                  http.StatusConflict,
	KindConstraintNotMet:          http.StatusForbidden,
	KindUnhealthy:                 http.StatusServiceUnavailable,
	KindUnauthorized:              http.StatusUnauthorized,
}

// Status returns the HTTP status class the kind maps to. Unknown kinds are
// treated as internal faults.
func (k ErrorKind) Status() int {
	if status, ok := kindStatus[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ConnectorError is the internal error representation used between connector
// logic and the HTTP boundary. It carries richer context (a wrapped cause)
// than the wire envelope; the cause is logged before the error is downgraded
// to a schema.ErrorResponse.
type ConnectorError struct {
	Kind    ErrorKind
	Message string
	Details map[string]any

	cause error
}

func (e *ConnectorError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ConnectorError) Unwrap() error { return e.cause }

// WithDetails attaches structured details to the envelope.
func (e *ConnectorError) WithDetails(details map[string]any) *ConnectorError {
	e.Details = details
	return e
}

// Envelope renders the wire representation. The wrapped cause is deliberately
// omitted so internals never leak to clients.
func (e *ConnectorError) Envelope() schema.ErrorResponse {
	return schema.ErrorResponse{
		Kind:    string(e.Kind),
		Message: e.Message,
		Details: e.Details,
	}
}

func newError(kind ErrorKind, message string) *ConnectorError {
	return &ConnectorError{Kind: kind, Message: message}
}

// NewInvalidRequest flags a request that does not meet the requirements of
// the specification.
func NewInvalidRequest(message string) *ConnectorError {
	return newError(KindInvalidRequest, message)
}

// NewUnprocessableContent flags a well-formed request that cannot be followed
// due to semantic errors.
func NewUnprocessableContent(message string) *ConnectorError {
	return newError(KindUnprocessableContent, message)
}

// NewUnsupportedOperation flags a request relying on a feature the connector
// does not implement.
func NewUnsupportedOperation(message string) *ConnectorError {
	return newError(KindUnsupportedOperation, message)
}

// NewConflict flags a mutation that would produce a conflicting state in the
// underlying data store.
func NewConflict(message string) *ConnectorError {
	return newError(KindConflict, message)
}

// NewConstraintNotMet flags a mutation that would violate a data store
// constraint.
func NewConstraintNotMet(message string) *ConnectorError {
	return newError(KindConstraintNotMet, message)
}

// NewUnhealthy reports a failed connector health check.
func NewUnhealthy(message string) *ConnectorError {
	return newError(KindUnhealthy, message)
}

// NewInternalError wraps an unexpected fault. The client sees a generic
// internal envelope; err is retained for logging.
func NewInternalError(err error) *ConnectorError {
	return &ConnectorError{Kind: KindInternal, Message: "internal error", cause: err}
}

// asConnectorError maps any error returned by connector logic onto the
// envelope taxonomy. Declared kinds pass through untouched; everything else
// is downgraded to an internal fault with its cause retained for the log.
func asConnectorError(err error) *ConnectorError {
	var connErr *ConnectorError
	if errors.As(err, &connErr) {
		return connErr
	}
	return NewInternalError(err)
}
