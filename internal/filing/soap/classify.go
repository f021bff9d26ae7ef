package soap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"entrygate/internal/filing"
)

var (
	filingNumberLeaves = []string{"entryno", "entry-no", "entrynumber", "filingnumber"}
	errorLeaves        = []string{"error", "errormessage", "reason"}
	failureStatuses    = map[string]bool{"ERROR": true, "REJECTED": true, "FAILED": true, "FAIL": true}
)

// Classify maps a raw SOAP response body onto an Outcome. It does not look at
// the HTTP status; see Client.Submit for that.
func Classify(body []byte) filing.Outcome {
	out, _ := classify(body)
	return out
}

// classify also reports whether the body carried a SOAP fault.
func classify(body []byte) (filing.Outcome, bool) {
	raw := string(body)

	env, err := leaves(body)
	if err != nil {
		return filing.Unrecognized(raw), false
	}
	if env.fault {
		reason := env.first("faultstring", "text", "reason")
		if reason == "" {
			reason = "SOAP fault"
		}
		return filing.Rejected(reason, raw), true
	}

	payload := env.first("return")
	if payload == "" {
		return classifyLeaves(env, raw), false
	}

	inner, err := leaves([]byte(payload))
	if err != nil || len(inner.values) == 0 {
		return classifyText(payload), false
	}
	return classifyLeaves(inner, payload), false
}

func classifyLeaves(l *leafSet, raw string) filing.Outcome {
	if status := strings.ToUpper(l.first("status")); failureStatuses[status] {
		reason := l.first(errorLeaves...)
		if reason == "" {
			reason = status
		}
		return filing.Rejected(reason, raw)
	}
	if num := l.first(filingNumberLeaves...); num != "" {
		return filing.Accepted(num, raw)
	}
	if reason := l.first(errorLeaves...); reason != "" {
		return filing.Rejected(reason, raw)
	}
	return filing.Unrecognized(raw)
}

// classifyText handles a plain-text return value.
func classifyText(s string) filing.Outcome {
	trimmed := strings.TrimSpace(s)
	head := strings.ToUpper(trimmed)
	if i := strings.IndexAny(head, " :-"); i > 0 {
		head = head[:i]
	}
	if failureStatuses[head] {
		return filing.Rejected(trimmed, s)
	}
	return filing.Unrecognized(s)
}

// leafSet holds the text of every element that has no child elements, keyed
// by lowercased local name. The first non-empty occurrence wins.
type leafSet struct {
	values map[string]string
	fault  bool
}

func (l *leafSet) first(names ...string) string {
	for _, n := range names {
		if v := l.values[n]; v != "" {
			return v
		}
	}
	return ""
}

type frame struct {
	name     string
	text     strings.Builder
	children bool
}

func leaves(b []byte) (*leafSet, error) {
	dec := xml.NewDecoder(bytes.NewReader(b))
	dec.Strict = false

	set := &leafSet{values: make(map[string]string)}
	var stack []*frame
	sawElement := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			sawElement = true
			name := strings.ToLower(t.Name.Local)
			if name == "fault" {
				set.fault = true
			}
			if n := len(stack); n > 0 {
				stack[n-1].children = true
			}
			stack = append(stack, &frame{name: name})
		case xml.CharData:
			if n := len(stack); n > 0 {
				stack[n-1].text.Write(t)
			}
		case xml.EndElement:
			n := len(stack)
			if n == 0 {
				continue
			}
			f := stack[n-1]
			stack = stack[:n-1]
			if f.children {
				continue
			}
			if v := strings.TrimSpace(f.text.String()); v != "" {
				if _, seen := set.values[f.name]; !seen {
					set.values[f.name] = v
				}
			}
		}
	}
	if !sawElement {
		return nil, errors.New("no XML elements")
	}
	return set, nil
}
