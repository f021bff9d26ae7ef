package normalize

import (
	"strings"

	"entrygate/internal/codetable"
)

// DefaultCountry is used when no default is configured.
const DefaultCountry = "CN"

// portPunctuation is replaced with spaces before port lookups.
const portPunctuation = ",;.()"

// MatchKind records how a value was resolved.
type MatchKind string

const (
	MatchNone        MatchKind = ""
	MatchExact       MatchKind = "exact"
	MatchSubstring   MatchKind = "substring"
	MatchNumeric     MatchKind = "numeric"
	MatchPassthrough MatchKind = "passthrough"
	MatchTruncated   MatchKind = "truncated"
	MatchDefault     MatchKind = "default"
)

// Match is the result of resolving a value against a code table.
type Match struct {
	Code  string
	Kind  MatchKind
	Input string // the cleaned lookup string
}

// OK reports whether the value resolved to a code.
func (m Match) OK() bool {
	return m.Kind != MatchNone
}

// Normalizer resolves ports, carriers and countries against a fixed set of
// code tables. It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	tables         *codetable.Tables
	defaultCountry string
}

// New creates a Normalizer. A nil tables value uses codetable.Default and an
// empty defaultCountry uses DefaultCountry.
func New(tables *codetable.Tables, defaultCountry string) *Normalizer {
	if tables == nil {
		tables = codetable.Default()
	}
	defaultCountry = strings.ToUpper(strings.TrimSpace(defaultCountry))
	if defaultCountry == "" {
		defaultCountry = DefaultCountry
	}
	return &Normalizer{tables: tables, defaultCountry: defaultCountry}
}

// DefaultCountry returns the configured fallback country code.
func (n *Normalizer) DefaultCountry() string {
	return n.defaultCountry
}

// Port resolves v to a port code. ok is false when it cannot be resolved;
// no guess is made.
func (n *Normalizer) Port(v any) (string, bool) {
	m := n.PortMatch(v)
	return m.Code, m.OK()
}

// PortMatch tries an exact table match, then the first table key contained
// in the cleaned value, then passes through a 4 or 5 digit numeric code.
func (n *Normalizer) PortMatch(v any) Match {
	s, ok := Scalar(v)
	if !ok {
		return Match{}
	}
	key := collapse(fold(s), portPunctuation)
	if key == "" {
		return Match{}
	}
	if code, ok := n.tables.Ports.Lookup(key); ok {
		return Match{Code: code, Kind: MatchExact, Input: key}
	}
	if e, ok := n.tables.Ports.Contained(key); ok {
		return Match{Code: e.Code, Kind: MatchSubstring, Input: key}
	}
	if isDigits(key) && (len(key) == 4 || len(key) == 5) {
		return Match{Code: key, Kind: MatchNumeric, Input: key}
	}
	return Match{Input: key}
}

// Carrier resolves v to a SCAC code. ok is false only when v is null or
// empty.
func (n *Normalizer) Carrier(v any) (string, bool) {
	m := n.CarrierMatch(v)
	return m.Code, m.OK()
}

// CarrierMatch tries an exact table match, then the first table key contained
// in the value, and finally takes the first four letters or digits.
func (n *Normalizer) CarrierMatch(v any) Match {
	s, ok := Scalar(v)
	if !ok {
		return Match{}
	}
	key := collapse(strings.ToUpper(s), "")
	if key == "" {
		return Match{}
	}
	if code, ok := n.tables.Carriers.Lookup(key); ok {
		return Match{Code: code, Kind: MatchExact, Input: key}
	}
	if e, ok := n.tables.Carriers.Contained(key); ok {
		return Match{Code: e.Code, Kind: MatchSubstring, Input: key}
	}
	src := alnumOnly(key)
	if src == "" {
		src = key
	}
	r := []rune(src)
	if len(r) > 4 {
		r = r[:4]
	}
	return Match{Code: string(r), Kind: MatchTruncated, Input: key}
}

// Country resolves v to a two-letter country code. It always returns a code:
// unresolved values fall back to the configured default country, which is an
// assumption about the shipment and not a verified fact.
func (n *Normalizer) Country(v any) string {
	return n.CountryMatch(v).Code
}

// CountryMatch passes through two-letter codes, then tries an exact and a
// substring name lookup before falling back to the default country.
func (n *Normalizer) CountryMatch(v any) Match {
	s, _ := Scalar(v)
	key := lettersOnly(fold(s))
	if key == "" {
		return Match{Code: n.defaultCountry, Kind: MatchDefault}
	}
	if len(key) == 2 && isASCIIAlpha(key) {
		return Match{Code: key, Kind: MatchPassthrough, Input: key}
	}
	if code, ok := n.tables.Countries.Lookup(key); ok {
		return Match{Code: code, Kind: MatchExact, Input: key}
	}
	if e, ok := n.tables.Countries.Contained(key); ok {
		return Match{Code: e.Code, Kind: MatchSubstring, Input: key}
	}
	return Match{Code: n.defaultCountry, Kind: MatchDefault, Input: key}
}
