package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

type pdfColumn struct {
	header string
	width  float64
	max    int // 0 means no truncation
}

// Landscape A4 leaves 265mm between the default margins
var pdfColumns = []pdfColumn{
	{"ID", 20, 0},
	{"Name", 35, 18},
	{"Phone", 25, 0},
	{"State", 25, 12},
	{"Pay", 15, 0},
	{"Status", 20, 0},
	{"Del", 20, 0},
	{"Total", 20, 0},
	{"Products", 85, 45},
}

const pdfRowHeight = 8

// WritePDF renders a landscape report with a title, the filter summary and a
// bordered table
func WritePDF(w io.Writer, report *Report) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	latin := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Order Verification Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 10, latin(filterSummary(report)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 10, col.header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, o := range report.Orders {
		values := []string{
			o.ID,
			o.CustomerName,
			o.Phone,
			o.State,
			orDefault(string(o.PaymentMethod), "Prepaid"),
			string(o.Status),
			orDefault(string(o.DeliveryType), "Standard"),
			o.Total,
			strings.Join(o.Products, ", "),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, pdfRowHeight, latin(truncate(values[i], col.max)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

func filterSummary(report *Report) string {
	start := orDefault(strings.TrimSpace(report.StartDate), "All")
	end := orDefault(strings.TrimSpace(report.EndDate), "All")

	summary := fmt.Sprintf("Date: %s to %s", start, end)
	if report.Status != "" {
		summary += " | Status: " + report.Status
	}
	if report.Delivery != "" {
		summary += " | Delivery: " + report.Delivery
	}
	return summary
}

// truncate cuts s to max runes and marks the cut with "..."
func truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
