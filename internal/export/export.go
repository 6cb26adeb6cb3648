// Package export renders order listings as CSV, XLSX and PDF downloads.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"orderdesk/internal/models"
)

// Format is a supported download format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ErrUnsupportedFormat is returned for an unknown export format
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat maps a route segment to a Format. "excel" is accepted for xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Columns is the header row shared by the tabular formats
var Columns = []string{
	"ID", "Name", "Phone", "Address", "State", "Payment", "Source",
	"Products", "Total", "Status", "Timestamp", "Notes", "Delivery",
}

// Report is one export request: the selected orders plus the filters that chose them
type Report struct {
	Orders    []*models.Order
	StartDate string
	EndDate   string
	Status    string
	Delivery  string
}

// Label names the filter selection, "all" when no status or delivery filter was set
func (r *Report) Label() string {
	var parts []string
	for _, p := range []string{r.Status, r.Delivery} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, strings.ReplaceAll(p, " ", "_"))
		}
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, "_")
}

// Filename returns orders_<label>_<start>_to_<end>.<ext>
func (r *Report) Filename(format Format) string {
	return fmt.Sprintf("orders_%s_%s_to_%s.%s", r.Label(), orAll(r.StartDate), orAll(r.EndDate), format)
}

// Write renders the report in the requested format
func Write(w io.Writer, format Format, report *Report) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, report.Orders)
	case FormatXLSX:
		return WriteXLSX(w, report.Orders)
	case FormatPDF:
		return WritePDF(w, report)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// record flattens an order into the Columns order
func record(o *models.Order) []string {
	return []string{
		o.ID,
		o.CustomerName,
		o.Phone,
		o.Address,
		o.State,
		orDefault(string(o.PaymentMethod), string(models.PaymentPrepaid)),
		string(o.Source),
		strings.Join(o.Products, ", "),
		o.Total,
		string(o.Status),
		o.Timestamp,
		o.Notes,
		orDefault(string(o.DeliveryType), string(models.DeliveryStandard)),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orAll(v string) string {
	return orDefault(strings.TrimSpace(v), "all")
}
