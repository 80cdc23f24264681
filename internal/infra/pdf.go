package infra

// pdf.go: bill PDF generation using go-pdf/fpdf.
// A4 page with:
//   - Store name header
//   - Bill number, date and client block
//   - Item table (ornament ID, type, weight, purity, price)
//   - Subtotal, tax and bold total
//   - Payment method

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jewelpos/internal/model"

	"github.com/go-pdf/fpdf"
)

// RenderBillPDF builds the bill document and returns the PDF bytes.
// The bill must be loaded with its Client and Items.Ornament.
func RenderBillPDF(bill *model.Bill, storeName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 36 // total margins = 36mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW, 10, storeName+" Bill", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Bill info ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 11)
	line := func(s string) { pdf.CellFormat(contentW, 6, s, "", 1, "L", false, 0, "") }
	line("Bill Number: " + bill.Number())
	line("Date: " + bill.CreatedAt.Format("02/01/2006 15:04"))
	if bill.Client != nil {
		line("Client Name: " + bill.Client.Name)
		line("Phone: " + bill.Client.Phone)
		if bill.Client.Email != nil && *bill.Client.Email != "" {
			line("Email: " + *bill.Client.Email)
		}
		if bill.Client.Address != nil && *bill.Client.Address != "" {
			line("Address: " + *bill.Client.Address)
		}
	}
	pdf.Ln(4)

	// ── Items header ─────────────────────────────────────────────────────────
	colID := contentW * 0.20
	colType := contentW * 0.26
	colWeight := contentW * 0.18
	colPurity := contentW * 0.14
	colPrice := contentW * 0.22

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(colID, 7, "Item ID", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colType, 7, "Type", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colWeight, 7, "Weight", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colPurity, 7, "Purity", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colPrice, 7, "Price", "B", 1, "R", false, 0, "")

	// ── Item rows ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range bill.Items {
		typ, weight, purity := "", "", ""
		if item.Ornament != nil {
			typ = item.Ornament.Type
			weight = item.Ornament.Weight.String() + "g"
			purity = item.Ornament.Purity
		}
		pdf.CellFormat(colID, 6, item.OrnamentID, "", 0, "L", false, 0, "")
		pdf.CellFormat(colType, 6, typ, "", 0, "L", false, 0, "")
		pdf.CellFormat(colWeight, 6, weight, "", 0, "R", false, 0, "")
		pdf.CellFormat(colPurity, 6, purity, "", 0, "C", false, 0, "")
		pdf.CellFormat(colPrice, 6, "Rs. "+item.SellingPrice.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(18, pdf.GetY(), pageW-18, pdf.GetY())
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := contentW - colPrice
	total := func(label, amount string) {
		pdf.CellFormat(labelW, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(colPrice, 6, amount, "", 1, "R", false, 0, "")
	}
	total("Subtotal:", "Rs. "+bill.Subtotal.StringFixed(2))
	total("Tax (3%):", "Rs. "+bill.Tax.StringFixed(2))
	pdf.SetFont("Helvetica", "B", 12)
	total("Total:", "Rs. "+bill.TotalAmount.StringFixed(2))
	pdf.SetFont("Helvetica", "", 10)
	pdf.Ln(2)
	total("Payment Method:", strings.ToUpper(bill.PaymentMethod))

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.SetY(pageH - 28)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(contentW, 5, "Thank you for your business!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render bill %s: %w", bill.Number(), err)
	}
	return buf.Bytes(), nil
}

// WriteBillPDF renders the bill into storagePath/<bill number>.pdf and returns
// the file path. storagePath is created if needed.
func WriteBillPDF(bill *model.Bill, storeName, storagePath string) (string, error) {
	data, err := RenderBillPDF(bill, storeName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, bill.Number()+".pdf")
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
