// Package filing describes the result of handing an entry document to the
// filing service.
package filing

import (
	"time"

	"entrygate/internal/domain"
)

// Outcome is the classified reply to one submission attempt. Exactly one of
// FilingNumber, Reason, Error or RawResponse is the interesting field,
// depending on Status.
type Outcome struct {
	Status       domain.FilingStatus `json:"status"`
	FilingNumber string              `json:"filing_number,omitempty"`
	Reason       string              `json:"reason,omitempty"`
	Error        string              `json:"error,omitempty"`
	RawResponse  string              `json:"raw_response,omitempty"`
	SubmittedAt  time.Time           `json:"submitted_at"`
	Duration     time.Duration       `json:"duration"`
}

// Accepted reports whether the filing service assigned a filing number.
func (o Outcome) Accepted() bool {
	return o.Status == domain.FilingAccepted
}

func Accepted(filingNumber, raw string) Outcome {
	return Outcome{Status: domain.FilingAccepted, FilingNumber: filingNumber, RawResponse: raw}
}

func Rejected(reason, raw string) Outcome {
	return Outcome{Status: domain.FilingRejected, Reason: reason, RawResponse: raw}
}

// TransportError builds an outcome for a call that never produced a usable
// reply.
func TransportError(err error) Outcome {
	msg := "unknown transport error"
	if err != nil {
		msg = err.Error()
	}
	return Outcome{Status: domain.FilingTransportError, Error: msg}
}

func Unrecognized(raw string) Outcome {
	return Outcome{Status: domain.FilingUnrecognized, RawResponse: raw}
}
