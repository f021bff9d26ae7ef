package domain

import (
	"time"

	"github.com/google/uuid"
)

// Submission is one recorded filing attempt. The submitted XML is kept
// because it is the artefact the filing service saw; the entry record
// itself is not persisted.
type Submission struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	DraftID      uuid.UUID    `db:"draft_id" json:"draft_id"`
	Status       FilingStatus `db:"status" json:"status"`
	FilingNumber string       `db:"filing_number" json:"filing_number,omitempty"`
	Reason       string       `db:"reason" json:"reason,omitempty"`
	Error        string       `db:"error" json:"error,omitempty"`
	RawResponse  string       `db:"raw_response" json:"raw_response,omitempty"`
	HouseBL      string       `db:"house_bl" json:"house_bl,omitempty"`
	MasterBL     string       `db:"master_bl" json:"master_bl,omitempty"`
	CarrierSCAC  string       `db:"carrier_scac" json:"carrier_scac,omitempty"`
	PortOfEntry  string       `db:"port_of_entry" json:"port_of_entry,omitempty"`
	LineCount    int          `db:"line_count" json:"line_count"`
	TotalValue   string       `db:"total_value" json:"total_value"`
	DocumentXML  string       `db:"document_xml" json:"document_xml,omitempty"`
	SubmittedAt  time.Time    `db:"submitted_at" json:"submitted_at"`
	DurationMS   int64        `db:"duration_ms" json:"duration_ms"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}
