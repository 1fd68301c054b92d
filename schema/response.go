package schema

import (
	"errors"

	"github.com/hasura/ndc-sdk-go/internal/runtime/jsoncodec"
)

// Response wraps an operation result that will be serialized to JSON. It
// holds either a typed value, or bytes the connector asserts are already
// valid JSON of type T. Raw responses let connectors stream results from a
// backing store without a decode/re-encode round trip.
type Response[T any] struct {
	value *T
	raw   []byte
}

// NewResponse wraps a typed value.
func NewResponse[T any](value *T) *Response[T] {
	return &Response[T]{value: value}
}

// NewRawResponse wraps pre-serialized JSON. The SDK does not validate the
// bytes; the connector is responsible for them being well-formed JSON of
// type T.
func NewRawResponse[T any](raw []byte) *Response[T] {
	return &Response[T]{raw: raw}
}

// MarshalJSON implements json.Marshaler.
func (r *Response[T]) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	if r.value == nil {
		return nil, errors.New("schema: response holds neither a value nor raw bytes")
	}
	return jsoncodec.Marshal(r.value)
}

// Value returns the typed value, deserializing raw bytes if necessary. It is
// intended for tests and compatibility shims rather than hot paths.
func (r *Response[T]) Value() (*T, error) {
	if r.value != nil {
		return r.value, nil
	}
	if r.raw == nil {
		return nil, errors.New("schema: response holds neither a value nor raw bytes")
	}
	var value T
	if err := jsoncodec.Unmarshal(r.raw, &value); err != nil {
		return nil, err
	}
	return &value, nil
}
