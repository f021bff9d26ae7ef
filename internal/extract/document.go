// Package extract is the boundary between the document extraction service
// and the entry pipeline. It decodes the untrusted JSON the extraction model
// produced and gives shape-tolerant access to its sections.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"entrygate/internal/domain"
	"entrygate/internal/normalize"
)

// Section names produced by the extraction service.
const (
	SectionSummary           = "summary"
	SectionBillOfLading      = "bill_of_lading"
	SectionCommercialInvoice = "commercial_invoice"
	SectionPackingList       = "packing_list"
	SectionArrivalNotice     = "arrival_notice"
)

var sectionNames = []string{
	SectionSummary,
	SectionBillOfLading,
	SectionCommercialInvoice,
	SectionPackingList,
	SectionArrivalNotice,
}

// wrapperKeys are envelopes the extraction service has been seen to put
// around the sections.
var wrapperKeys = []string{"parsed_result", "data", "result"}

var (
	// ErrNotObject means the payload decoded but is not a JSON object.
	ErrNotObject = fmt.Errorf("%w: extracted document is not a JSON object", domain.ErrInvalidDocument)
	// ErrMalformed means no JSON object could be recovered from the payload.
	ErrMalformed = fmt.Errorf("%w: extracted document is not valid JSON", domain.ErrInvalidDocument)
)

// Section is one logical document section. Values keep the shape the model
// produced: strings, json.Number, bools, nested objects or lists.
type Section map[string]any

// Get returns the first value among keys that is present and non-null.
func (s Section) Get(keys ...string) any {
	for _, k := range keys {
		if v, ok := s[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// First returns the first value among keys that reduces to a non-empty
// string.
func (s Section) First(keys ...string) any {
	for _, k := range keys {
		if v, ok := s[k]; ok && normalize.Present(v) {
			return v
		}
	}
	return nil
}

// Items returns the first non-empty item collection found under keys. A list
// is returned as-is; a single item object becomes a one-element list; an
// object whose values are all objects is read in sorted key order.
func (s Section) Items(keys ...string) []any {
	for _, k := range keys {
		if items := asList(s[k]); len(items) > 0 {
			return items
		}
	}
	return nil
}

func asList(v any) []any {
	switch x := v.(type) {
	case []any:
		return x
	case map[string]any:
		if len(x) == 0 {
			return nil
		}
		keys := make([]string, 0, len(x))
		for k, inner := range x {
			if _, ok := inner.(map[string]any); !ok {
				return []any{x}
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, x[k])
		}
		return out
	default:
		return nil
	}
}

// Document is a decoded extraction result.
type Document map[string]any

// Section returns the named section, or an empty Section when it is missing
// or not an object.
func (d Document) Section(name string) Section {
	if m, ok := d[name].(map[string]any); ok {
		return Section(m)
	}
	return Section{}
}

// HasSections reports whether any known section key is present.
func (d Document) HasSections() bool {
	for _, name := range sectionNames {
		if _, ok := d[name]; ok {
			return true
		}
	}
	return false
}

// Decode parses an extraction result. It accepts plain JSON, JSON inside
// markdown code fences, or JSON embedded in surrounding prose. Numbers keep
// their literal text.
func Decode(raw []byte) (Document, error) {
	text := bytes.TrimSpace(raw)
	text = stripFences(text)

	v, err := decodeValue(text)
	if err != nil {
		start := bytes.IndexByte(text, '{')
		end := bytes.LastIndexByte(text, '}')
		if start < 0 || end <= start {
			return nil, ErrMalformed
		}
		v, err = decodeValue(text[start : end+1])
		if err != nil {
			return nil, ErrMalformed
		}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return unwrap(Document(obj)), nil
}

// FromMap wraps an already decoded object.
func FromMap(m map[string]any) Document {
	if m == nil {
		return Document{}
	}
	return unwrap(Document(m))
}

func unwrap(d Document) Document {
	if d.HasSections() {
		return d
	}
	for _, k := range wrapperKeys {
		if inner, ok := d[k].(map[string]any); ok && Document(inner).HasSections() {
			return Document(inner)
		}
	}
	return d
}

func decodeValue(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

func stripFences(b []byte) []byte {
	s := string(b)
	if !strings.HasPrefix(s, "```") {
		return b
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}
