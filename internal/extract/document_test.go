package extract_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entrygate/internal/domain"
	"entrygate/internal/extract"
)

func TestDecode_PlainObject(t *testing.T) {
	doc, err := extract.Decode([]byte(`{"summary":{"total_value_usd":500.0,"carrier":"ZIM"}}`))
	require.NoError(t, err)

	s := doc.Section(extract.SectionSummary)
	assert.Equal(t, json.Number("500.0"), s["total_value_usd"])
	assert.Equal(t, "ZIM", s.Get("carrier"))
}

func TestDecode_CodeFence(t *testing.T) {
	raw := "```json\n{\"bill_of_lading\": {\"bl_no\": \"MBL1\"}}\n```"
	doc, err := extract.Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "MBL1", doc.Section(extract.SectionBillOfLading).Get("bl_no"))
}

func TestDecode_EmbeddedInProse(t *testing.T) {
	raw := "Here is the extraction you asked for:\n{\"summary\": {\"bl_no\": \"X\"}}\nLet me know if anything is missing."
	doc, err := extract.Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "X", doc.Section(extract.SectionSummary).Get("bl_no"))
}

func TestDecode_UnwrapsEnvelope(t *testing.T) {
	for _, key := range []string{"parsed_result", "data"} {
		t.Run(key, func(t *testing.T) {
			raw := `{"` + key + `": {"arrival_notice": {"firms_code": "Y309"}}, "model": "m"}`
			doc, err := extract.Decode([]byte(raw))
			require.NoError(t, err)
			assert.True(t, doc.HasSections())
			assert.Equal(t, "Y309", doc.Section(extract.SectionArrivalNotice).Get("firms_code"))
		})
	}
}

func TestDecode_EnvelopeIgnoredWhenSectionsAtTop(t *testing.T) {
	raw := `{"summary": {"carrier": "A"}, "data": {"summary": {"carrier": "B"}}}`
	doc, err := extract.Decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "A", doc.Section(extract.SectionSummary).Get("carrier"))
}

func TestDecode_EmptyObject(t *testing.T) {
	doc, err := extract.Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.False(t, doc.HasSections())
	assert.Empty(t, doc.Section(extract.SectionSummary))
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"array", `[{"summary": {}}]`, extract.ErrNotObject},
		{"string", `"hello"`, extract.ErrNotObject},
		{"number", `42`, extract.ErrNotObject},
		{"null", `null`, extract.ErrNotObject},
		{"garbage", `not json at all`, extract.ErrMalformed},
		{"empty", ``, extract.ErrMalformed},
		{"broken object", `{"summary": `, extract.ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := extract.Decode([]byte(tt.raw))
			assert.Nil(t, doc)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrInvalidDocument)
		})
	}
}

func TestDocument_SectionNotObject(t *testing.T) {
	doc := extract.FromMap(map[string]any{
		"summary":      "just a string",
		"packing_list": []any{1, 2},
	})
	assert.Empty(t, doc.Section(extract.SectionSummary))
	assert.Empty(t, doc.Section(extract.SectionPackingList))
	assert.Empty(t, doc.Section(extract.SectionBillOfLading))
}

func TestFromMap_Nil(t *testing.T) {
	doc := extract.FromMap(nil)
	assert.NotNil(t, doc)
	assert.Empty(t, doc.Section(extract.SectionSummary))
}

func TestSection_GetAndFirst(t *testing.T) {
	s := extract.Section{
		"hs_code":  nil,
		"hts_code": "",
		"hts":      "8471.30.01",
	}
	assert.Equal(t, "", s.Get("hs_code", "hts_code", "hts"))
	assert.Equal(t, "8471.30.01", s.First("hs_code", "hts_code", "hts"))
	assert.Nil(t, s.Get("missing"))
	assert.Nil(t, s.First("hs_code", "hts_code"))
}

func TestSection_Items(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		s := extract.Section{"items": []any{map[string]any{"hs_code": "1"}, "junk"}}
		assert.Len(t, s.Items("items"), 2)
	})

	t.Run("single object", func(t *testing.T) {
		s := extract.Section{"items": map[string]any{"hs_code": "1", "qty": 2}}
		items := s.Items("items")
		require.Len(t, items, 1)
		assert.Equal(t, "1", items[0].(map[string]any)["hs_code"])
	})

	t.Run("object of objects in key order", func(t *testing.T) {
		s := extract.Section{"items": map[string]any{
			"b": map[string]any{"hs_code": "2"},
			"a": map[string]any{"hs_code": "1"},
		}}
		items := s.Items("items")
		require.Len(t, items, 2)
		assert.Equal(t, "1", items[0].(map[string]any)["hs_code"])
		assert.Equal(t, "2", items[1].(map[string]any)["hs_code"])
	})

	t.Run("first non-empty key wins", func(t *testing.T) {
		s := extract.Section{
			"items":      []any{},
			"line_items": []any{map[string]any{"hs": "3"}},
		}
		assert.Len(t, s.Items("items", "line_items"), 1)
	})

	t.Run("scalar ignored", func(t *testing.T) {
		s := extract.Section{"items": "three boxes"}
		assert.Empty(t, s.Items("items"))
	})
}
