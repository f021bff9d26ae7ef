// Package codetable holds the static lookup tables used to resolve free-text
// port, carrier and country names into filing codes.
//
// Tables are ordered. When more than one key is contained in a lookup string,
// the entry that appears first in the table wins, so reordering a table can
// change resolution results.
package codetable

import "strings"

// Entry is a single key → code mapping.
type Entry struct {
	Key  string
	Code string
}

// Table is an ordered, read-only list of entries. Keys are stored uppercase.
type Table struct {
	entries []Entry
	index   map[string]string
}

// NewTable builds a Table from entries in the given order. Keys are trimmed
// and uppercased; blank keys or codes are skipped and a repeated key keeps its
// first code.
func NewTable(entries []Entry) *Table {
	t := &Table{index: make(map[string]string, len(entries))}
	for _, e := range entries {
		key := strings.ToUpper(strings.TrimSpace(e.Key))
		code := strings.TrimSpace(e.Code)
		if key == "" || code == "" {
			continue
		}
		if _, dup := t.index[key]; dup {
			continue
		}
		t.index[key] = code
		t.entries = append(t.entries, Entry{Key: key, Code: code})
	}
	return t
}

// Lookup returns the code for an exact key match.
func (t *Table) Lookup(key string) (string, bool) {
	if t == nil {
		return "", false
	}
	code, ok := t.index[key]
	return code, ok
}

// Contained returns the first entry, in table order, whose key occurs as a
// substring of s. The match is best effort and not unique.
func (t *Table) Contained(s string) (Entry, bool) {
	if t == nil || s == "" {
		return Entry{}, false
	}
	for _, e := range t.entries {
		if strings.Contains(s, e.Key) {
			return e, true
		}
	}
	return Entry{}, false
}

// Keys returns the table keys in order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, len(t.entries))
	for i, e := range t.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the table entries in order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Tables groups the lookup tables used by the normalizer.
type Tables struct {
	Ports     *Table
	Carriers  *Table
	Countries *Table
}
