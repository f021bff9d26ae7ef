// Package entryxml serializes an entry record into the entryUpload document
// accepted by the filing service.
package entryxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"entrygate/internal/domain"
	"entrygate/internal/entry"
)

// TransmitFlag is always "N": documents are uploaded as drafts and a person
// has to transmit them from the filing service.
const TransmitFlag = "N"

// ErrInvalidRecord is returned for records that break the mapper's output
// invariants.
var ErrInvalidRecord = fmt.Errorf("%w: cannot serialize", domain.ErrInvalidEntry)

// Encode renders rec. Output carries no XML declaration and no indentation,
// and the same record always yields the same bytes.
func Encode(rec *entry.Record) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	if len(rec.Items) == 0 {
		return nil, fmt.Errorf("%w: record has no line items", ErrInvalidRecord)
	}

	var buf bytes.Buffer
	w := &writer{enc: xml.NewEncoder(&buf)}

	w.open("entryUpload")
	w.open("entry")

	w.open("entryHeader")
	w.open("entry-no")
	w.leaf("system-generated", "")
	w.close("entry-no")
	w.leaf("entryType", rec.EntryType.String())
	w.leaf("importerNo", rec.ImporterNo.String())
	w.leaf("brokerNo", rec.BrokerNo.String())
	w.leaf("portOfEntry", rec.PortOfEntry.String())
	w.leaf("portOfUnlading", rec.PortOfUnlading.String())
	w.leaf("carrierSCAC", rec.CarrierSCAC.String())
	w.leaf("houseBOLNumber", rec.HouseBL.String())
	w.leaf("masterBOLNumber", rec.MasterBL.String())
	w.leaf("countryOfOrigin", rec.CountryOfOrigin.String())
	w.leaf("transmitFlag", TransmitFlag)
	w.close("entryHeader")

	w.open("lineItems")
	emitted := 0
	for i := range rec.Items {
		li := &rec.Items[i]
		emitted++
		w.open("lineItem")
		w.leaf("lineNo", strconv.Itoa(emitted))
		w.leaf("tariff", li.HSCode.String())
		w.leaf("countryOfOrigin", li.Origin.String())
		w.leaf("value", li.Value.String())
		w.leaf("quantity", li.Quantity.String())
		w.leaf("uom", li.UOM.String())
		w.leaf("manufacturerId", li.ManufacturerID.String())
		if desc := text(li.Description.String()); desc != "" {
			w.leaf("description", desc)
		}
		w.close("lineItem")
	}
	w.close("lineItems")

	w.open("totals")
	w.leaf("totalEnteredValue", rec.TotalValue.String())
	w.leaf("totalLineItems", strconv.Itoa(emitted))
	w.close("totals")

	w.close("entry")
	w.close("entryUpload")

	if err := w.flush(); err != nil {
		return nil, fmt.Errorf("entryxml.Encode: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeString is Encode returning a string.
func EncodeString(rec *entry.Record) (string, error) {
	b, err := Encode(rec)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// writer keeps the first encoder error and turns later calls into no-ops.
type writer struct {
	enc *xml.Encoder
	err error
}

func (w *writer) token(t xml.Token) {
	if w.err != nil {
		return
	}
	w.err = w.enc.EncodeToken(t)
}

func (w *writer) open(name string) {
	w.token(xml.StartElement{Name: xml.Name{Local: name}})
}

func (w *writer) close(name string) {
	w.token(xml.EndElement{Name: xml.Name{Local: name}})
}

func (w *writer) leaf(name, value string) {
	w.open(name)
	if v := text(value); v != "" {
		w.token(xml.CharData(v))
	}
	w.close(name)
}

func (w *writer) flush() error {
	if w.err != nil {
		return w.err
	}
	return w.enc.Flush()
}

// text trims a value and drops characters XML 1.0 cannot carry.
func text(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, s)
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
