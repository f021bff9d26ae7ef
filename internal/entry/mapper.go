package entry

import (
	"fmt"
	"strings"

	"entrygate/internal/extract"
	"entrygate/internal/normalize"
)

// Item field synonyms, in priority order.
var (
	hsCodeKeys      = []string{"hs_code", "hts_code", "hts", "tariff_code", "hs"}
	originKeys      = []string{"country_of_origin", "origin", "coo"}
	valueKeys       = []string{"total_value_usd", "total_value", "value", "amount"}
	quantityKeys    = []string{"quantity_pcs", "qty_pcs", "quantity", "qty"}
	uomKeys         = []string{"uom", "unit", "unit_of_measure"}
	manufacturerKey = []string{"manufacturer_id", "mid"}
	descriptionKeys = []string{"description_english", "english_desc", "description", "desc"}

	invoiceItemKeys = []string{"items", "line_items", "invoice_items"}
	packingItemKeys = []string{"items", "packing_rows"}
)

var itemFieldKeys = concat(hsCodeKeys, originKeys, valueKeys, quantityKeys, uomKeys, manufacturerKey, descriptionKeys)

// Provenance kinds that are not normalizer match kinds.
const (
	sourceConfig      = "config"
	sourcePlaceholder = "placeholder"
	sourceFirst       = "first"
)

// Settings are the per-deployment constants stamped onto every record.
type Settings struct {
	BrokerNo   string
	EntryType  string
	DefaultUOM string
}

// Mapper turns an extracted document into a Record. It holds only read-only
// state and is safe for concurrent use.
type Mapper struct {
	norm     *normalize.Normalizer
	settings Settings
}

// NewMapper creates a Mapper. A nil normalizer uses the built-in code tables.
func NewMapper(norm *normalize.Normalizer, settings Settings) *Mapper {
	if norm == nil {
		norm = normalize.New(nil, "")
	}
	settings.BrokerNo = strings.TrimSpace(settings.BrokerNo)
	if strings.TrimSpace(settings.EntryType) == "" {
		settings.EntryType = DefaultEntryType
	}
	if strings.TrimSpace(settings.DefaultUOM) == "" {
		settings.DefaultUOM = DefaultUOM
	}
	settings.DefaultUOM = strings.ToUpper(strings.TrimSpace(settings.DefaultUOM))
	return &Mapper{norm: norm, settings: settings}
}

// candidate is one source of a header field.
type candidate struct {
	path  string
	value any
}

type sections struct {
	summary, bol, invoice, packing, arrival extract.Section
}

func (s sections) pick(field string) []candidate {
	return []candidate{
		{extract.SectionBillOfLading + "." + field, s.bol.Get(field)},
		{extract.SectionArrivalNotice + "." + field, s.arrival.Get(field)},
		{extract.SectionSummary + "." + field, s.summary.Get(field)},
	}
}

// Map builds a Record from doc. It never fails: missing or malformed input
// yields null fields, documented defaults and, when needed, a synthesized
// line item.
func (m *Mapper) Map(doc extract.Document) *Record {
	if doc == nil {
		doc = extract.Document{}
	}
	src := sections{
		summary: doc.Section(extract.SectionSummary),
		bol:     doc.Section(extract.SectionBillOfLading),
		invoice: doc.Section(extract.SectionCommercialInvoice),
		packing: doc.Section(extract.SectionPackingList),
		arrival: doc.Section(extract.SectionArrivalNotice),
	}

	rec := &Record{Provenance: make(map[string]string)}

	rec.EntryType = T(m.settings.EntryType)
	rec.Provenance["entry_type"] = sourceConfig
	rec.BrokerNo = T(m.settings.BrokerNo)
	rec.Provenance["broker_no"] = sourceConfig

	rec.PortOfEntry = m.port(rec, "port_of_entry", src.pick("port_of_loading"))
	rec.PortOfUnlading = m.port(rec, "port_of_unlading", src.pick("port_of_discharge"))

	rec.CarrierSCAC = m.carrier(rec, []candidate{
		{extract.SectionArrivalNotice + ".firms_code", src.arrival.Get("firms_code")},
		{extract.SectionBillOfLading + ".ocean_vessel_voy_no", src.bol.Get("ocean_vessel_voy_no")},
		{extract.SectionSummary + ".carrier", src.summary.Get("carrier")},
	})

	rec.HouseBL = firstText(rec, "house_bl", []candidate{
		{extract.SectionBillOfLading + ".house_bl_no", src.bol.Get("house_bl_no")},
		{extract.SectionArrivalNotice + ".house_bl_no", src.arrival.Get("house_bl_no")},
	})
	rec.MasterBL = firstText(rec, "master_bl", []candidate{
		{extract.SectionBillOfLading + ".bl_no", src.bol.Get("bl_no")},
		{extract.SectionArrivalNotice + ".master_bl_no", src.arrival.Get("master_bl_no")},
		{extract.SectionSummary + ".bl_no", src.summary.Get("bl_no")},
	})

	rec.CountryOfOrigin = m.country(rec, []candidate{
		{extract.SectionCommercialInvoice + ".country_of_origin", src.invoice.Get("country_of_origin")},
		{extract.SectionSummary + ".country_of_origin", src.summary.Get("country_of_origin")},
	})

	rec.TotalValue = totalValue(rec, []candidate{
		{extract.SectionSummary + ".total_value_usd", src.summary.Get("total_value_usd")},
		{extract.SectionCommercialInvoice + ".total_value_usd", src.invoice.Get("total_value_usd")},
		{extract.SectionCommercialInvoice + ".total_value", src.invoice.Get("total_value")},
	})

	rec.Items = m.lineItems(rec, src)
	return rec
}

func (m *Mapper) port(rec *Record, field string, cands []candidate) Text {
	for _, c := range cands {
		if match := m.norm.PortMatch(c.value); match.OK() {
			rec.Provenance[field] = provenance(c.path, string(match.Kind))
			return T(match.Code)
		}
	}
	return Text{}
}

func (m *Mapper) carrier(rec *Record, cands []candidate) Text {
	for _, c := range cands {
		if !normalize.Present(c.value) {
			continue
		}
		match := m.norm.CarrierMatch(c.value)
		if !match.OK() {
			continue
		}
		rec.Provenance["carrier_scac"] = provenance(c.path, string(match.Kind))
		return T(match.Code)
	}
	return Text{}
}

func (m *Mapper) country(rec *Record, cands []candidate) Text {
	for _, c := range cands {
		if !normalize.Present(c.value) {
			continue
		}
		match := m.norm.CountryMatch(c.value)
		rec.Provenance["country_of_origin"] = provenance(c.path, string(match.Kind))
		return T(match.Code)
	}
	rec.Provenance["country_of_origin"] = string(normalize.MatchDefault)
	return T(m.norm.DefaultCountry())
}

func firstText(rec *Record, field string, cands []candidate) Text {
	for _, c := range cands {
		if s, ok := normalize.Scalar(c.value); ok && s != "" {
			rec.Provenance[field] = provenance(c.path, sourceFirst)
			return T(s)
		}
	}
	return Text{}
}

// totalValue takes the first numeric non-zero amount. The extraction
// template pre-fills summary totals with 0, so a zero never wins.
func totalValue(rec *Record, cands []candidate) Text {
	for _, c := range cands {
		amt, ok := normalize.Amount(c.value)
		if ok && !normalize.IsZero(amt) {
			rec.Provenance["total_value"] = provenance(c.path, sourceFirst)
			return T(amt)
		}
	}
	rec.Provenance["total_value"] = string(normalize.MatchDefault)
	return T("0")
}

func (m *Mapper) lineItems(rec *Record, src sections) []LineItem {
	header := rec.CountryOfOrigin.String()

	lines := m.buildLines(src.invoice.Items(invoiceItemKeys...), header)
	if len(lines) > 0 {
		rec.Provenance["items"] = extract.SectionCommercialInvoice
		return lines
	}
	lines = m.buildLines(src.packing.Items(packingItemKeys...), header)
	if len(lines) > 0 {
		rec.Provenance["items"] = extract.SectionPackingList
		return lines
	}

	rec.Provenance["items"] = sourcePlaceholder
	return []LineItem{{
		HSCode:      T(UnknownHSCode),
		Origin:      T(header),
		Value:       T(rec.TotalValue.String()),
		Quantity:    T("1"),
		UOM:         T(m.settings.DefaultUOM),
		Description: T(PlaceholderDescription),
		Synthesized: true,
	}}
}

func (m *Mapper) buildLines(raw []any, header string) []LineItem {
	var out []LineItem
	for _, v := range raw {
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		s := extract.Section(obj)
		if s.First(itemFieldKeys...) == nil {
			continue
		}
		out = append(out, m.buildLine(s, header))
	}
	return out
}

func (m *Mapper) buildLine(s extract.Section, header string) LineItem {
	li := LineItem{
		HSCode:         T(UnknownHSCode),
		Origin:         T(header),
		Value:          T("0"),
		Quantity:       T("0"),
		UOM:            T(m.settings.DefaultUOM),
		ManufacturerID: nonEmpty(s.First(manufacturerKey...)),
		Description:    nonEmpty(s.First(descriptionKeys...)),
	}
	if hs := nonEmpty(s.First(hsCodeKeys...)); hs.Valid {
		li.HSCode = hs
	}
	if v := s.First(originKeys...); v != nil {
		if match := m.norm.CountryMatch(v); match.Kind != normalize.MatchDefault {
			li.Origin = T(match.Code)
		}
	}
	if amt, ok := firstAmount(s, valueKeys); ok {
		li.Value = T(amt)
	}
	if qty, ok := firstAmount(s, quantityKeys); ok {
		li.Quantity = T(qty)
	}
	if uom := nonEmpty(s.First(uomKeys...)); uom.Valid {
		li.UOM = T(strings.ToUpper(uom.Value))
	}
	return li
}

// firstAmount returns the first synonym that holds a decimal amount.
func firstAmount(s extract.Section, keys []string) (string, bool) {
	for _, k := range keys {
		if amt, ok := normalize.Amount(s[k]); ok {
			return amt, true
		}
	}
	return "", false
}

func nonEmpty(v any) Text {
	t := TextOf(v)
	if t.Empty() {
		return Text{}
	}
	return t
}

func provenance(path, kind string) string {
	return fmt.Sprintf("%s (%s)", path, kind)
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
