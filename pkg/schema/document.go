package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyDocument is returned when there is no JSON text to parse.
var ErrEmptyDocument = errors.New("empty document")

// Document is a parsed model response. It holds any well-formed JSON value
// and marshals back to exactly that value; Tree gives a typed view for
// documents in the theme + root shape.
type Document struct {
	raw json.RawMessage
}

// Parse strips a surrounding Markdown code fence from text and requires the
// remainder to be one well-formed JSON value.
func Parse(text string) (*Document, error) {
	body := StripFence(text)
	if body == "" {
		return nil, ErrEmptyDocument
	}

	dec := json.NewDecoder(strings.NewReader(body))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value at offset %d", dec.InputOffset())
	}

	return &Document{raw: compact(raw)}, nil
}

// FromValue encodes v as a document.
func FromValue(v any) (*Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Document{raw: b}, nil
}

// StripFence removes a leading ```lang line and a trailing ``` line.
func StripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Raw returns a copy of the JSON encoding.
func (d *Document) Raw() json.RawMessage {
	if d == nil {
		return nil
	}
	return append(json.RawMessage(nil), d.raw...)
}

// String returns the JSON encoding.
func (d *Document) String() string {
	if d == nil {
		return "null"
	}
	return string(d.raw)
}

// Value decodes the document into generic Go values.
func (d *Document) Value() (any, error) {
	var v any
	if d == nil {
		return v, nil
	}
	if err := json.Unmarshal(d.raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Tree decodes the document as a theme + root UI tree. No validation is
// done: missing fields stay zero and unknown fields are ignored. It fails
// only when the document is not a JSON object.
func (d *Document) Tree() (*Tree, error) {
	if d == nil {
		return nil, ErrEmptyDocument
	}
	var t Tree
	if err := json.Unmarshal(d.raw, &t); err != nil {
		return nil, fmt.Errorf("document is not a UI tree: %w", err)
	}
	return &t, nil
}

// Clone returns an independent copy.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{raw: d.Raw()}
}

// Equal reports whether both documents hold the same encoding.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	return bytes.Equal(d.raw, other.raw)
}

func (d *Document) MarshalJSON() ([]byte, error) {
	if d == nil || len(d.raw) == 0 {
		return []byte("null"), nil
	}
	return d.Raw(), nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	if !json.Valid(data) {
		return errors.New("invalid JSON document")
	}
	d.raw = compact(data)
	return nil
}

func compact(data []byte) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return append(json.RawMessage(nil), data...)
	}
	return buf.Bytes()
}
