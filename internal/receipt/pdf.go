package receipt

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// renderPDF renders the charity's pdf_template through Liquid and lays the
// result out as a single-page A4 document.
func (c *Composer) renderPDF(p ComposeParams, b map[string]interface{}) ([]byte, error) {
	text, err := c.engine.ParseAndRenderString(p.Charity.PdfTemplate, b)
	if err != nil {
		return nil, &CompositionError{Stage: "pdf", Err: err}
	}

	title := p.Charity.Name.String
	if title == "" {
		title = "Donation Receipt"
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 11)
	doc.MultiCell(0, 6, text, "", "L", false)
	doc.Ln(8)

	doc.SetFont("Helvetica", "I", 9)
	footer := fmt.Sprintf("Order %d. Donation of %s recorded %s.",
		p.Donation.OrderID,
		p.Donation.DonationAmount.StringFixed(2),
		p.Donation.CreatedAt.Format("2006-01-02"),
	)
	doc.CellFormat(0, 5, footer, "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, &CompositionError{Stage: "pdf", Err: err}
	}
	return buf.Bytes(), nil
}
