package entry

import (
	"bytes"
	"encoding/json"

	"entrygate/internal/normalize"
)

// Text is a nullable string. The zero value is null.
type Text struct {
	Value string
	Valid bool
}

// T returns a non-null Text.
func T(s string) Text {
	return Text{Value: s, Valid: true}
}

// TextOf reduces an arbitrary decoded value to a Text with normalize.Scalar.
func TextOf(v any) Text {
	s, ok := normalize.Scalar(v)
	if !ok {
		return Text{}
	}
	return T(s)
}

// String returns the value, or "" when null.
func (t Text) String() string {
	if !t.Valid {
		return ""
	}
	return t.Value
}

// Empty reports whether t is null or the empty string.
func (t Text) Empty() bool {
	return !t.Valid || t.Value == ""
}

// MarshalJSON encodes null or a JSON string.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// UnmarshalJSON accepts any JSON value. Numbers keep their literal text and
// objects or arrays are reduced the same way extracted fields are.
func (t *Text) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*t = TextOf(v)
	return nil
}
