package invoice

import (
	"bytes"
	"fmt"

	"github.com/Julius14h/FlyNext/internal/domain"
	"github.com/jung-kurt/gofpdf"
)

// Render turns a completed booking into a minimal PDF invoice: a title, one
// grid row per item (type, id, price) and a total line.
func Render(booking *domain.Booking) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(pageWidth-20, 12, "IBS Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(22, 160, 133)
	pdf.SetTextColor(255, 255, 255)
	colWidths := []float64{60, 60, 60}
	for i, header := range []string{"Type", "Id", "Price"} {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	var total float64
	for _, item := range booking.Items {
		pdf.CellFormat(colWidths[0], 8, string(item.Type), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 8, fmt.Sprintf("%d", item.ID), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%.2f", item.Price), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
		total += item.Price
	}

	pdf.Ln(6)
	pdf.CellFormat(pageWidth-20, 8, fmt.Sprintf("Total: $%.2f", total), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return buf.Bytes(), nil
}
