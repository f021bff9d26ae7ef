// Package soap submits entry documents to the filing service's SOAP
// uploadEntry operation.
package soap

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"entrygate/internal/config"
	"entrygate/internal/filing"
)

const (
	soapAction      = `"uploadEntry"`
	envelopeNS      = "http://schemas.xmlsoap.org/soap/envelope/"
	maxResponseSize = 4 << 20
)

// Client implements port.FilingSubmitter. It never retries: a repeated
// upload could create a duplicate filing.
type Client struct {
	endpoint  string
	namespace string
	username  string
	password  string
	client    *http.Client
	limiter   *rate.Limiter
	now       func() time.Time
}

// NewClient creates a Client from the filing configuration.
func NewClient(cfg *config.FilingConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewClientWithHTTP(cfg, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP creates a Client that sends requests through hc.
func NewClientWithHTTP(cfg *config.FilingConfig, hc *http.Client) *Client {
	return &Client{
		endpoint:  cfg.Endpoint,
		namespace: cfg.Namespace,
		username:  cfg.Username,
		password:  cfg.Password,
		client:    hc,
		limiter:   newLimiter(cfg.RatePerMinute),
		now:       time.Now,
	}
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// Submit uploads doc once and classifies the reply. Every failure is
// reported in the returned Outcome.
func (c *Client) Submit(ctx context.Context, doc []byte) filing.Outcome {
	start := c.now()
	out := c.submit(ctx, doc)
	out.SubmittedAt = start
	out.Duration = c.now().Sub(start)
	if out.Status != "" && !out.Accepted() {
		log.Printf("soap.Client.Submit: status=%s reason=%q error=%q", out.Status, out.Reason, out.Error)
	}
	return out
}

func (c *Client) submit(ctx context.Context, doc []byte) filing.Outcome {
	if c.endpoint == "" {
		return filing.TransportError(errors.New("filing endpoint is not configured"))
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return filing.TransportError(fmt.Errorf("waiting for submission slot: %w", err))
	}

	body, err := c.envelope(doc)
	if err != nil {
		return filing.TransportError(fmt.Errorf("building envelope: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return filing.TransportError(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapAction)

	resp, err := c.client.Do(req)
	if err != nil {
		return filing.TransportError(fmt.Errorf("calling filing service: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return filing.TransportError(fmt.Errorf("reading response: %w", err))
	}

	out, fault := classify(respBody)
	if (resp.StatusCode < 200 || resp.StatusCode > 299) && !fault {
		return filing.TransportError(fmt.Errorf("filing service error (status %d): %s", resp.StatusCode, truncate(respBody, 512)))
	}
	return out
}

type uploadEntry struct {
	XMLName  xml.Name
	Username string `xml:"username"`
	Password string `xml:"password"`
	EntryXML string `xml:"entryXml"`
}

type envelope struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`
	SoapNS  string   `xml:"xmlns:soapenv,attr"`
	OpNS    string   `xml:"xmlns:ent,attr,omitempty"`
	Body    struct {
		Upload uploadEntry
	} `xml:"soapenv:Body"`
}

// envelope wraps doc in an uploadEntry call. The document travels as
// escaped text, not as nested markup.
func (c *Client) envelope(doc []byte) ([]byte, error) {
	env := envelope{SoapNS: envelopeNS}
	name := "uploadEntry"
	if c.namespace != "" {
		env.OpNS = c.namespace
		name = "ent:uploadEntry"
	}
	env.Body.Upload = uploadEntry{
		XMLName:  xml.Name{Local: name},
		Username: c.username,
		Password: c.password,
		EntryXML: string(doc),
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(env); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
