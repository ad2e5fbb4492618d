package render

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"medbill/m/domain"
)

const ContentType = "application/pdf"

// Options controls presentation details that are not part of the invoice data.
type Options struct {
	CurrencySymbol string
}

type rgb struct{ r, g, b int }

var (
	titleColor   = rgb{0x1e, 0x40, 0xaf}
	headingColor = rgb{0x1f, 0x29, 0x37}
	headerFill   = rgb{0x3b, 0x82, 0xf6}
	headerText   = rgb{245, 245, 245}
	rowFills     = []rgb{{255, 255, 255}, {211, 211, 211}}
	gridColor    = rgb{128, 128, 128}
)

// Column widths in millimetres: item, quantity, unit price, total.
var itemColumns = []float64{76.2, 25.4, 38.1, 38.1}

// Filename is the suggested download name of an invoice document.
func Filename(invoiceID int64) string {
	return fmt.Sprintf("invoice_%d.pdf", invoiceID)
}

// Render lays out an invoice as an A4 PDF. The output depends only on snap and
// opts: document dates are pinned to the invoice date and catalog entries are
// sorted, so the same input always yields the same bytes.
func Render(snap domain.InvoiceSnapshot, opts Options) ([]byte, error) {
	inv := snap.Invoice
	date, err := time.Parse(domain.DateLayout, inv.Date)
	if err != nil {
		return nil, fmt.Errorf("invoice %d has invalid date %q: %w", inv.ID, inv.Date, err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(date)
	pdf.SetModificationDate(date)
	pdf.SetTitle(fmt.Sprintf("Invoice %d", inv.ID), false)
	pdf.SetMargins(16, 16, 16)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(d decimal.Decimal) string { return tr(opts.CurrencySymbol) + d.StringFixed(2) }

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentWidth := pageWidth - left - right

	// Title
	pdf.SetFont("Helvetica", "B", 24)
	setText(pdf, titleColor)
	pdf.CellFormat(contentWidth, 12, "INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	// Invoice details
	meta := [][2]string{
		{"Invoice ID:", "#" + strconv.FormatInt(inv.ID, 10)},
		{"Date:", date.Format("January 02, 2006")},
		{"Customer:", tr(snap.Customer.Name)},
	}
	if snap.Customer.Phone != "" {
		meta = append(meta, [2]string{"Phone:", tr(snap.Customer.Phone)})
	}
	if snap.Customer.Address != "" {
		meta = append(meta, [2]string{"Address:", tr(snap.Customer.Address)})
	}
	setText(pdf, rgb{0, 0, 0})
	for _, row := range meta {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(50.8, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(101.6, 8, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(10)

	// Items
	pdf.SetFont("Helvetica", "B", 14)
	setText(pdf, headingColor)
	pdf.CellFormat(contentWidth, 10, "Items", "", 1, "L", false, 0, "")

	pdf.SetDrawColor(gridColor.r, gridColor.g, gridColor.b)
	pdf.SetFont("Helvetica", "B", 12)
	setText(pdf, headerText)
	setFill(pdf, headerFill)
	for i, h := range []string{"Item", "Quantity", "Unit Price", "Total"} {
		pdf.CellFormat(itemColumns[i], 10, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, rgb{0, 0, 0})
	for n, item := range inv.Items {
		setFill(pdf, rowFills[n%len(rowFills)])
		cells := []string{
			tr(item.MedicineName),
			strconv.FormatInt(item.Quantity, 10),
			money(item.Price),
			money(item.Subtotal()),
		}
		for i, c := range cells {
			pdf.CellFormat(itemColumns[i], 8, c, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(8)

	// Total
	pdf.SetFont("Helvetica", "B", 16)
	setText(pdf, titleColor)
	pdf.CellFormat(contentWidth, 10, "Total Amount: "+money(inv.TotalAmount), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %d: %w", inv.ID, err)
	}
	return buf.Bytes(), nil
}

func setText(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
func setFill(pdf *fpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }
