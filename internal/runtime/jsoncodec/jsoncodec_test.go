package jsoncodec

import (
	"bytes"
	"strings"
	"testing"
)

type payload struct {
	Collection string         `json:"collection"`
	Arguments  map[string]any `json:"arguments,omitempty"`
}

func TestMarshalUnmarshal(t *testing.T) {
	t.Parallel()

	in := payload{Collection: "articles", Arguments: map[string]any{"limit": float64(10)}}
	data, err := Marshal(&in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out payload
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Collection != in.Collection || out.Arguments["limit"] != in.Arguments["limit"] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestUnmarshalRejectsTruncatedInput(t *testing.T) {
	t.Parallel()

	var out payload
	if err := Unmarshal([]byte(`{"collection":`), &out); err == nil {
		t.Fatal("expected an error for truncated JSON")
	}
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Encode(&buf, payload{Collection: "authors"}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), `"collection":"authors"`) {
		t.Fatalf("unexpected encoding: %s", buf.String())
	}

	var out payload
	if err := Decode(&buf, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Collection != "authors" {
		t.Fatalf("Decode produced %+v", out)
	}
}
