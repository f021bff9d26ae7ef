// Package review produces the checklist a broker works through before
// promoting a draft entry. Findings are advisory and never block a draft.
package review

import (
	"fmt"
	"regexp"
	"strings"

	"entrygate/internal/entry"
	"entrygate/internal/normalize"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding codes.
const (
	CodeBrokerMissing    = "BROKER_MISSING"
	CodePortUnresolved   = "PORT_UNRESOLVED"
	CodePortApproximate  = "PORT_APPROXIMATE"
	CodeCarrierMissing   = "CARRIER_MISSING"
	CodeCarrierTruncated = "CARRIER_TRUNCATED"
	CodeBLMissing        = "BL_MISSING"
	CodeImporterMissing  = "IMPORTER_MISSING"
	CodeCountryDefaulted = "COUNTRY_DEFAULTED"
	CodeTotalZero        = "TOTAL_ZERO"
	CodePlaceholderLine  = "PLACEHOLDER_LINE"
	CodeHSCodeUnknown    = "HS_CODE_UNKNOWN"
	CodeHSCodeMalformed  = "HS_CODE_MALFORMED"
	CodeLineValueZero    = "LINE_VALUE_ZERO"
	CodeLineQuantityZero = "LINE_QUANTITY_ZERO"
)

// Finding is one item on the review checklist.
type Finding struct {
	Field    string   `json:"field"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// Counts tallies findings by severity.
type Counts struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

var (
	dottedHS = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}(\d{2})?$`)
	plainHS  = regexp.MustCompile(`^\d{8,10}$`)
)

// Check inspects rec and returns its findings in a stable order: header
// fields first, then line items in record order.
func Check(rec *entry.Record) []Finding {
	if rec == nil {
		return nil
	}
	var out []Finding
	add := func(field string, sev Severity, code, msg string) {
		out = append(out, Finding{Field: field, Severity: sev, Code: code, Message: msg})
	}

	if rec.BrokerNo.Empty() {
		add("broker_no", SeverityError, CodeBrokerMissing, "broker number is not configured")
	}

	for _, p := range []struct {
		field string
		label string
		value entry.Text
	}{
		{"port_of_entry", "port of entry", rec.PortOfEntry},
		{"port_of_unlading", "port of unlading", rec.PortOfUnlading},
	} {
		switch {
		case p.value.Empty():
			add(p.field, SeverityWarning, CodePortUnresolved, p.label+" could not be resolved to a port code")
		case strings.HasSuffix(rec.Provenance[p.field], "("+string(normalize.MatchSubstring)+")"):
			add(p.field, SeverityWarning, CodePortApproximate,
				fmt.Sprintf("%s %s was guessed from a partial name match", p.label, p.value.Value))
		}
	}

	switch {
	case rec.CarrierSCAC.Empty():
		add("carrier_scac", SeverityError, CodeCarrierMissing, "no carrier found on any document")
	case strings.HasSuffix(rec.Provenance["carrier_scac"], "("+string(normalize.MatchTruncated)+")"):
		add("carrier_scac", SeverityWarning, CodeCarrierTruncated,
			fmt.Sprintf("carrier %q is a truncation of an unknown carrier name", rec.CarrierSCAC.Value))
	}

	if rec.HouseBL.Empty() {
		add("house_bl", SeverityWarning, CodeBLMissing, "house bill of lading number is missing")
	}
	if rec.MasterBL.Empty() {
		add("master_bl", SeverityWarning, CodeBLMissing, "master bill of lading number is missing")
	}
	if rec.ImporterNo.Empty() {
		add("importer_no", SeverityInfo, CodeImporterMissing, "importer number must be entered before transmission")
	}
	if rec.Provenance["country_of_origin"] == string(normalize.MatchDefault) ||
		strings.HasSuffix(rec.Provenance["country_of_origin"], "("+string(normalize.MatchDefault)+")") {
		add("country_of_origin", SeverityWarning, CodeCountryDefaulted,
			fmt.Sprintf("country of origin defaulted to %s", rec.CountryOfOrigin.String()))
	}
	if normalize.IsZero(rec.TotalValue.String()) {
		add("total_value", SeverityWarning, CodeTotalZero, "total entered value is zero or missing")
	}

	for i := range rec.Items {
		li := &rec.Items[i]
		field := fmt.Sprintf("items[%d]", i)
		if li.Synthesized {
			add(field, SeverityError, CodePlaceholderLine, "line was generated because no item detail was found")
		}
		hs := li.HSCode.String()
		switch {
		case hs == "" || hs == entry.UnknownHSCode:
			add(field+".hs_code", SeverityError, CodeHSCodeUnknown, "tariff number is unknown")
		case !dottedHS.MatchString(hs) && !plainHS.MatchString(hs):
			add(field+".hs_code", SeverityWarning, CodeHSCodeMalformed,
				fmt.Sprintf("tariff number %q is not in NNNN.NN.NN[NN] form", hs))
		}
		if normalize.IsZero(li.Value.String()) {
			add(field+".value", SeverityWarning, CodeLineValueZero, "line value is zero or missing")
		}
		if normalize.IsZero(li.Quantity.String()) {
			add(field+".quantity", SeverityWarning, CodeLineQuantityZero, "line quantity is zero or missing")
		}
	}
	return out
}

// Summary counts findings by severity.
func Summary(findings []Finding) Counts {
	var c Counts
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			c.Errors++
		case SeverityWarning:
			c.Warnings++
		case SeverityInfo:
			c.Info++
		}
	}
	return c
}
