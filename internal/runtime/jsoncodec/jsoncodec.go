// Package jsoncodec centralises JSON handling for the SDK on top of sonic,
// configured for encoding/json-compatible behaviour. All wire bodies go
// through this package so the codec can be swapped in one place.
package jsoncodec

import (
	"io"

	"github.com/bytedance/sonic"
)

var defaultConfig = sonic.ConfigStd

func Marshal(v any) ([]byte, error) {
	return defaultConfig.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return defaultConfig.Unmarshal(data, v)
}

// Decode reads a single JSON value from r into v. Request bodies are decoded
// with this rather than Unmarshal so the transport's size-limited reader is
// consumed directly, without buffering the whole body first.
func Decode(r io.Reader, v any) error {
	dec := defaultConfig.NewDecoder(r)
	return dec.Decode(v)
}

// Encode writes v to w followed by a newline.
func Encode(w io.Writer, v any) error {
	enc := defaultConfig.NewEncoder(w)
	return enc.Encode(v)
}
