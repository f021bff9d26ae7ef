package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"entrygate/internal/entry"
	"entrygate/internal/review"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Line No",
	"HS Code",
	"Country of Origin",
	"Value",
	"Quantity",
	"UOM",
	"Manufacturer ID",
	"Description",
	"Synthesized",
	"Findings",
	"House B/L",
	"Master B/L",
	"Carrier SCAC",
	"Port of Entry",
}

// Writer wraps csv.Writer for exporting entry line items as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteEntry writes one row per line item of rec. Header fields are repeated
// on every row so a filtered sheet still identifies the shipment. Findings
// against a line are listed by code in its Findings column.
func (w *Writer) WriteEntry(rec *entry.Record, findings []review.Finding) error {
	if rec == nil {
		return nil
	}
	byLine := lineFindings(findings)
	for i := range rec.Items {
		row := lineToRow(rec, i, byLine[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteAll writes the header and every line of rec, then flushes.
func WriteAll(out io.Writer, rec *entry.Record, findings []review.Finding) error {
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteEntry(rec, findings); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func lineToRow(rec *entry.Record, i int, codes []string) []string {
	li := &rec.Items[i]
	row := make([]string, len(columns))
	row[0] = strconv.Itoa(i + 1)
	row[1] = li.HSCode.String()
	row[2] = li.Origin.String()
	row[3] = li.Value.String()
	row[4] = li.Quantity.String()
	row[5] = li.UOM.String()
	row[6] = li.ManufacturerID.String()
	row[7] = li.Description.String()
	row[8] = formatBool(li.Synthesized)
	row[9] = strings.Join(codes, ";")
	row[10] = rec.HouseBL.String()
	row[11] = rec.MasterBL.String()
	row[12] = rec.CarrierSCAC.String()
	row[13] = rec.PortOfEntry.String()
	return row
}

var lineField = regexp.MustCompile(`^items\[(\d+)\]`)

// lineFindings groups finding codes by line index.
func lineFindings(findings []review.Finding) map[int][]string {
	out := make(map[int][]string)
	for _, f := range findings {
		m := lineField.FindStringSubmatch(f.Field)
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out[idx] = append(out[idx], f.Code)
	}
	return out
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a bill of lading number for use in
// Content-Disposition. Runs of other characters become a single underscore
// and the result is cut to 100 characters.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a filename of the form {bl}_lines_{YYYY-MM-DD}.csv.
// An empty or unusable bill of lading number becomes "entry".
func BuildFilename(bl string, now time.Time) string {
	sanitized := SanitizeFilename(bl)
	if sanitized == "" {
		sanitized = "entry"
	}
	return fmt.Sprintf("%s_lines_%s.csv", sanitized, now.Format("2006-01-02"))
}
