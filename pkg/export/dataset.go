// Package export renders tabular reports as CSV or PDF.
package export

// Format names a rendering.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Dataset defines tabular export content. Rows are keyed by header.
// Summary lines are printed after the table, label then value.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
	Summary [][2]string
}
