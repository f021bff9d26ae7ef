package soap_test

import (
	"context"
	"encoding/xml"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entrygate/internal/config"
	"entrygate/internal/domain"
	"entrygate/internal/filing/soap"
)

const entryDoc = `<entryUpload><entry><entryHeader><transmitFlag>N</transmitFlag></entryHeader></entry></entryUpload>`

func envelopeWithReturn(ret string) string {
	return `<?xml version="1.0"?><soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>` +
		`<ns2:uploadEntryResponse xmlns:ns2="urn:entryupload"><return>` + html.EscapeString(ret) + `</return></ns2:uploadEntryResponse>` +
		`</soap:Body></soap:Envelope>`
}

const faultBody = `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body><soap:Fault>` +
	`<faultcode>soap:Client</faultcode><faultstring>Invalid credentials</faultstring>` +
	`</soap:Fault></soap:Body></soap:Envelope>`

func filingConfig(endpoint string) *config.FilingConfig {
	return &config.FilingConfig{
		Endpoint:  endpoint,
		Namespace: "urn:entryupload",
		Username:  "broker",
		Password:  "s3cret",
		Timeout:   5 * time.Second,
	}
}

type capturedRequest struct {
	Username string `xml:"Body>uploadEntry>username"`
	Password string `xml:"Body>uploadEntry>password"`
	EntryXML string `xml:"Body>uploadEntry>entryXml"`
}

func TestClient_Submit_Accepted(t *testing.T) {
	var got capturedRequest
	var action, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action = r.Header.Get("SOAPAction")
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = xml.Unmarshal(body, &got)
		_, _ = io.WriteString(w, envelopeWithReturn(`<result><status>OK</status><entryNo>ABC-1234567-8</entryNo></result>`))
	}))
	defer srv.Close()

	out := soap.NewClient(filingConfig(srv.URL)).Submit(context.Background(), []byte(entryDoc))

	assert.Equal(t, domain.FilingAccepted, out.Status)
	assert.True(t, out.Accepted())
	assert.Equal(t, "ABC-1234567-8", out.FilingNumber)
	assert.False(t, out.SubmittedAt.IsZero())

	assert.Equal(t, `"uploadEntry"`, action)
	assert.Contains(t, contentType, "text/xml")
	assert.Equal(t, "broker", got.Username)
	assert.Equal(t, "s3cret", got.Password)
	assert.Equal(t, entryDoc, got.EntryXML, "document travels as escaped text")
}

func TestClient_Submit_Fault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, faultBody)
	}))
	defer srv.Close()

	out := soap.NewClient(filingConfig(srv.URL)).Submit(context.Background(), []byte(entryDoc))

	assert.Equal(t, domain.FilingRejected, out.Status)
	assert.Equal(t, "Invalid credentials", out.Reason)
	assert.Contains(t, out.RawResponse, "Fault")
}

func TestClient_Submit_HTTPErrorWithoutFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream unavailable")
	}))
	defer srv.Close()

	out := soap.NewClient(filingConfig(srv.URL)).Submit(context.Background(), []byte(entryDoc))

	assert.Equal(t, domain.FilingTransportError, out.Status)
	assert.Contains(t, out.Error, "502")
}

func TestClient_Submit_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	out := soap.NewClient(filingConfig(srv.URL)).Submit(ctx, []byte(entryDoc))

	assert.Equal(t, domain.FilingTransportError, out.Status)
	assert.NotEmpty(t, out.Error)
}

func TestClient_Submit_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	out := soap.NewClient(filingConfig(url)).Submit(context.Background(), []byte(entryDoc))
	assert.Equal(t, domain.FilingTransportError, out.Status)
}

func TestClient_Submit_NotConfigured(t *testing.T) {
	out := soap.NewClient(filingConfig("")).Submit(context.Background(), []byte(entryDoc))
	assert.Equal(t, domain.FilingTransportError, out.Status)
	assert.Contains(t, out.Error, "not configured")
}

func TestClient_Submit_NeverRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	out := soap.NewClient(filingConfig(srv.URL)).Submit(context.Background(), []byte(entryDoc))
	assert.Equal(t, domain.FilingTransportError, out.Status)
	assert.Equal(t, 1, calls)
}

func TestClient_Submit_RateLimitedWaitCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, envelopeWithReturn(`<entryNo>1</entryNo>`))
	}))
	defer srv.Close()

	cfg := filingConfig(srv.URL)
	cfg.RatePerMinute = 1
	c := soap.NewClient(cfg)

	first := c.Submit(context.Background(), []byte(entryDoc))
	require.Equal(t, domain.FilingAccepted, first.Status)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	second := c.Submit(ctx, []byte(entryDoc))
	assert.Equal(t, domain.FilingTransportError, second.Status)
	assert.Contains(t, second.Error, "submission slot")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus domain.FilingStatus
		wantNumber string
		wantReason string
	}{
		{
			name:       "escaped payload with entry number",
			body:       envelopeWithReturn(`<response><entry-no>E-42</entry-no></response>`),
			wantStatus: domain.FilingAccepted,
			wantNumber: "E-42",
		},
		{
			name:       "nested payload with filing number",
			body:       `<Envelope><Body><uploadEntryResponse><return><filingNumber>F-9</filingNumber></return></uploadEntryResponse></Body></Envelope>`,
			wantStatus: domain.FilingAccepted,
			wantNumber: "F-9",
		},
		{
			name:       "error message",
			body:       envelopeWithReturn(`<response><errorMessage>Invalid HTS 9999.99.99</errorMessage></response>`),
			wantStatus: domain.FilingRejected,
			wantReason: "Invalid HTS 9999.99.99",
		},
		{
			name:       "failure status beats entry number",
			body:       envelopeWithReturn(`<response><status>Rejected</status><entryNo>X</entryNo><reason>duplicate</reason></response>`),
			wantStatus: domain.FilingRejected,
			wantReason: "duplicate",
		},
		{
			name:       "failure status without reason",
			body:       envelopeWithReturn(`<response><status>FAILED</status></response>`),
			wantStatus: domain.FilingRejected,
			wantReason: "FAILED",
		},
		{
			name:       "plain text error",
			body:       envelopeWithReturn(`ERROR: broker not authorized`),
			wantStatus: domain.FilingRejected,
			wantReason: "ERROR: broker not authorized",
		},
		{
			name:       "fault",
			body:       faultBody,
			wantStatus: domain.FilingRejected,
			wantReason: "Invalid credentials",
		},
		{
			name:       "plain text success is unrecognized",
			body:       envelopeWithReturn(`SUCCESS`),
			wantStatus: domain.FilingUnrecognized,
		},
		{
			name:       "empty payload",
			body:       envelopeWithReturn(``),
			wantStatus: domain.FilingUnrecognized,
		},
		{
			name:       "not xml",
			body:       `{"ok": true}`,
			wantStatus: domain.FilingUnrecognized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := soap.Classify([]byte(tt.body))
			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, tt.wantNumber, out.FilingNumber)
			assert.Equal(t, tt.wantReason, out.Reason)
			if tt.wantStatus == domain.FilingUnrecognized {
				assert.NotEmpty(t, out.RawResponse)
			}
		})
	}
}
