// Package entry maps extracted shipping documents onto a customs entry
// record.
package entry

import (
	"fmt"

	"entrygate/internal/domain"
)

// UnknownHSCode marks a line whose tariff number could not be found.
const UnknownHSCode = "9999.99.99"

// PlaceholderDescription is the description of a synthesized line.
const PlaceholderDescription = "AUTO GENERATED - NO ITEM DETAIL"

// Default settings.
const (
	DefaultEntryType = "01"
	DefaultUOM       = "PCS"
)

// LineItem is one tariff line of an entry.
type LineItem struct {
	HSCode         Text `json:"hs_code"`
	Origin         Text `json:"origin"`
	Value          Text `json:"value"`
	Quantity       Text `json:"quantity"`
	UOM            Text `json:"uom"`
	ManufacturerID Text `json:"manufacturer_id"`
	Description    Text `json:"description"`

	// Synthesized is set on the placeholder line created when a document
	// carries no usable item detail.
	Synthesized bool `json:"synthesized,omitempty"`
}

// Record is a customs entry ready for serialization. Records produced by
// Mapper.Map always carry at least one line item.
type Record struct {
	EntryType       Text       `json:"entry_type"`
	ImporterNo      Text       `json:"importer_no"`
	BrokerNo        Text       `json:"broker_no"`
	PortOfEntry     Text       `json:"port_of_entry"`
	PortOfUnlading  Text       `json:"port_of_unlading"`
	CarrierSCAC     Text       `json:"carrier_scac"`
	HouseBL         Text       `json:"house_bl"`
	MasterBL        Text       `json:"master_bl"`
	CountryOfOrigin Text       `json:"country_of_origin"`
	TotalValue      Text       `json:"total_value"`
	Items           []LineItem `json:"items"`

	// Provenance maps a field name to the source path that supplied it and
	// how the value was matched, e.g. "bill_of_lading.port_of_loading (exact)".
	Provenance map[string]string `json:"provenance,omitempty"`
}

// Validate checks the structural invariant that a record has line items.
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", domain.ErrInvalidEntry)
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: record has no line items", domain.ErrInvalidEntry)
	}
	return nil
}

// HasPlaceholder reports whether any line was synthesized.
func (r *Record) HasPlaceholder() bool {
	for i := range r.Items {
		if r.Items[i].Synthesized {
			return true
		}
	}
	return false
}
