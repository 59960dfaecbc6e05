package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"deedcheck/internal/service"
	"deedcheck/internal/validator/deed"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (17 columns).
var columns = []string{
	"Row",
	"Document ID",
	"Run ID",
	"Status",
	"Failure Kind",
	"Failure Stage",
	"Failure Fields",
	"Message",
	"Signed Date",
	"Recorded Date",
	"Numeric Amount",
	"County Raw",
	"County Canonical",
	"County Match Score",
	"Tax Rate",
	"Tax Owed",
	"Model Used",
}

// StatusError marks a batch row whose record could not be run at all.
const StatusError = "error"

// Writer wraps csv.Writer for exporting batch validation results as CSV.
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

// WriteItems converts batch items to CSV rows and writes them, one per record.
func (w *Writer) WriteItems(items []service.BatchItem) error {
	for i := range items {
		if err := w.csv.Write(itemToRow(&items[i])); err != nil {
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

// itemToRow converts one batch item to a row. Enrichment columns are only
// filled for accepted records; failure columns only for rejected ones.
func itemToRow(item *service.BatchItem) []string {
	row := make([]string, len(columns))
	row[0] = strconv.Itoa(item.Index + 1)

	if item.Err != nil || item.Result == nil {
		row[3] = StatusError
		if item.Err != nil {
			row[7] = item.Err.Error()
		}
		return row
	}

	res := item.Result
	row[2] = res.RunID.String()
	row[3] = string(res.Status)
	row[16] = res.ModelUsed

	if f := res.Outcome.Failure; f != nil {
		row[4] = string(f.Kind)
		row[5] = string(f.Stage)
		row[6] = strings.Join(f.FieldPaths, ";")
		row[7] = f.Message
		return row
	}

	rec := res.Outcome.Record
	row[1] = rec.DocumentID
	row[8] = rec.SignedOn.String()
	row[9] = rec.RecordedOn.String()
	row[10] = deed.FormatMinor(rec.NumericAmount)
	row[11] = rec.CountyRaw
	row[12] = rec.CountyCanonical
	row[13] = strconv.FormatFloat(rec.CountyMatchScore, 'f', 1, 64)
	row[14] = rec.TaxRate.String()
	row[15] = deed.FormatMinor(rec.TaxOwed)
	return row
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a report name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "deeds"
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.csv
func BuildFilename(name string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", SanitizeFilename(name), now.Format("2006-01-02"))
}
