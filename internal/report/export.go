package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"medbill/m/domain"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ExportFilename  = "invoices.xlsx"
	exportSheet     = "Invoices"
)

var exportHeadings = []string{"ID", "Date", "Customer", "Items", "Total"}

// ExportInvoices writes one workbook row per invoice, in the order given.
func ExportInvoices(w io.Writer, invoices []domain.InvoiceView) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeadings); err != nil {
		return fmt.Errorf("write headings: %w", err)
	}

	for i, inv := range invoices {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{inv.ID, inv.Date, inv.CustomerName, len(inv.Items), inv.TotalAmount.InexactFloat64()}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write invoice %d: %w", inv.ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
