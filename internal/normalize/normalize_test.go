package normalize_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"entrygate/internal/codetable"
	"entrygate/internal/normalize"
)

func TestScalar(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   string
		wantOK bool
	}{
		{"nil", nil, "", false},
		{"trimmed string", "  ABC123 \n", "ABC123", true},
		{"empty string", "", "", true},
		{"json number keeps literal", json.Number("500.0"), "500.0", true},
		{"float", float64(10), "10", true},
		{"fractional float", 12.5, "12.5", true},
		{"int", 7, "7", true},
		{"bool", true, "true", true},
		{"object value key", map[string]any{"value": " 2704 ", "raw": "x"}, "2704", true},
		{"object raw before text", map[string]any{"text": "t", "raw": "r"}, "r", true},
		{"object name key", map[string]any{"name": "ZIM", "confidence": 0.9}, "ZIM", true},
		{"nested object", map[string]any{"value": map[string]any{"text": "deep"}}, "deep", true},
		{"object with null value key", map[string]any{"value": nil, "name": "x"}, "", false},
		{"object fallback json", map[string]any{"b": 1, "a": "x"}, `{"a":"x","b":1}`, true},
		{"list first element", []any{" first ", "second"}, "first", true},
		{"empty list", []any{}, "", false},
		{"list of objects", []any{map[string]any{"value": "v"}}, "v", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalize.Scalar(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPresent(t *testing.T) {
	assert.True(t, normalize.Present("x"))
	assert.False(t, normalize.Present("   "))
	assert.False(t, normalize.Present(nil))
	assert.False(t, normalize.Present([]any{}))
}

func TestNormalizer_Port(t *testing.T) {
	n := normalize.New(codetable.Default(), "CN")

	tests := []struct {
		name     string
		in       any
		want     string
		wantOK   bool
		wantKind normalize.MatchKind
	}{
		{"city with state", "Los Angeles, CA", "2704", true, normalize.MatchSubstring},
		{"exact", "LONG BEACH", "2709", true, normalize.MatchExact},
		{"lowercase with parens", "long beach (ca)", "2709", true, normalize.MatchSubstring},
		{"exact beats substring", "LAX", "2720", true, normalize.MatchExact},
		{"empty", "", "", false, normalize.MatchNone},
		{"nil", nil, "", false, normalize.MatchNone},
		{"numeric passthrough", "99999", "99999", true, normalize.MatchNumeric},
		{"four digit passthrough", float64(2704), "2704", true, normalize.MatchNumeric},
		{"three digits unresolved", "123", "", false, normalize.MatchNone},
		{"six digits unresolved", "123456", "", false, normalize.MatchNone},
		{"foreign port unresolved", "NINGBO", "", false, normalize.MatchNone},
		{"object shape", map[string]any{"value": "Yantian, China"}, "58201", true, normalize.MatchSubstring},
		{"extra whitespace", "  LONG    BEACH  ", "2709", true, normalize.MatchExact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := n.PortMatch(tt.in)
			assert.Equal(t, tt.wantOK, m.OK())
			assert.Equal(t, tt.want, m.Code)
			assert.Equal(t, tt.wantKind, m.Kind)

			code, ok := n.Port(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestNormalizer_Carrier(t *testing.T) {
	n := normalize.New(nil, "")

	tests := []struct {
		name     string
		in       any
		want     string
		wantOK   bool
		wantKind normalize.MatchKind
	}{
		{"substring", "ZIM Integrated Shipping", "ZIMU", true, normalize.MatchSubstring},
		{"truncation fallback", "XYZQRS", "XYZQ", true, normalize.MatchTruncated},
		{"exact", "matson", "MATS", true, normalize.MatchExact},
		{"firms code", "Y309", "ZIMU", true, normalize.MatchExact},
		{"firms-derived container prefix", "ZIMU1234567", "ZIMU", true, normalize.MatchSubstring},
		{"short input kept", "AB", "AB", true, normalize.MatchTruncated},
		{"punctuation dropped before truncation", "X-Y.Z Q", "XYZQ", true, normalize.MatchTruncated},
		{"nil", nil, "", false, normalize.MatchNone},
		{"blank", "   ", "", false, normalize.MatchNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := n.CarrierMatch(tt.in)
			assert.Equal(t, tt.wantOK, m.OK())
			assert.Equal(t, tt.want, m.Code)
			assert.Equal(t, tt.wantKind, m.Kind)
		})
	}
}

func TestNormalizer_Country(t *testing.T) {
	n := normalize.New(codetable.Default(), "cn")
	assert.Equal(t, "CN", n.DefaultCountry())

	tests := []struct {
		name     string
		in       any
		want     string
		wantKind normalize.MatchKind
	}{
		{"two letter passthrough", "vn", "VN", normalize.MatchPassthrough},
		{"exact name", "Vietnam", "VN", normalize.MatchExact},
		{"diacritics folded", "Việt Nam", "VN", normalize.MatchExact},
		{"substring name", "Made in China", "CN", normalize.MatchSubstring},
		{"apostrophe", "People's Republic of China", "CN", normalize.MatchSubstring},
		{"unknown falls back", "Atlantis", "CN", normalize.MatchDefault},
		{"nil falls back", nil, "CN", normalize.MatchDefault},
		{"digits fall back", "12", "CN", normalize.MatchDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := n.CountryMatch(tt.in)
			assert.Equal(t, tt.want, m.Code)
			assert.Equal(t, tt.wantKind, m.Kind)
			assert.Equal(t, tt.want, n.Country(tt.in))
		})
	}
}

func TestNormalizer_ConfiguredDefaultCountry(t *testing.T) {
	n := normalize.New(nil, "VN")
	assert.Equal(t, "VN", n.Country(nil))
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   string
		wantOK bool
	}{
		{"number", json.Number("500"), "500", true},
		{"decimal string", "1234.50", "1234.50", true},
		{"currency and separators", "USD 1,234.50", "1234.50", true},
		{"dollar sign", "$99", "99", true},
		{"object", map[string]any{"value": 12}, "12", true},
		{"text rejected", "N/A", "", false},
		{"unit suffix rejected", "10 PCS", "", false},
		{"hex rejected", "0x1p4", "", false},
		{"decimal comma rejected", "1,5", "", false},
		{"european grouping rejected", "1.234,56", "", false},
		{"misplaced separator rejected", "12,34.00", "", false},
		{"grouped millions", "$1,234,567.8", "1234567.8", true},
		{"exponent number", json.Number("5E2"), "500", true},
		{"small exponent number", json.Number("1.25e-1"), "0.125", true},
		{"exponent string rejected", "5E2", "", false},
		{"float", 42.5, "42.5", true},
		{"trailing point", "5.", "5", true},
		{"leading plus", "+7", "7", true},
		{"leading point", ".5", "0.5", true},
		{"nil", nil, "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalize.Amount(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsZero(t *testing.T) {
	assert.True(t, normalize.IsZero("0"))
	assert.True(t, normalize.IsZero("0.00"))
	assert.True(t, normalize.IsZero("junk"))
	assert.False(t, normalize.IsZero("0.01"))
}
