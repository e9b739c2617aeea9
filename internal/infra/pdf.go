package infra

// pdf.go — receipt generation using go-pdf/fpdf. Produces A7-size
// thermal-style receipts with the store header, sale id and timestamp, one
// row per item (qty or weight), discount when present, bold total, and the
// cash/change breakdown. Output goes to storagePath/receipt_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/MILO-debug/POS/internal/model"
)

// ReceiptPrinter writes sale receipts to disk.
type ReceiptPrinter struct {
	storeName   string
	storagePath string
}

func NewReceiptPrinter(storeName, storagePath string) *ReceiptPrinter {
	return &ReceiptPrinter{storeName: storeName, storagePath: storagePath}
}

// WriteReceipt renders the sale and returns the absolute path of the file.
func (r *ReceiptPrinter) WriteReceipt(sale *model.Sale) (string, error) {
	if err := os.MkdirAll(r.storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(r.storagePath, fmt.Sprintf("receipt_%s.pdf", sale.ID))

	// A7 ≈ 74mm × 105mm, close to thermal receipt paper
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, r.storeName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	ref := sale.ID
	if len(ref) > 8 {
		ref = ref[:8]
	}
	pdf.CellFormat(contentW, 5, "Ref "+ref, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, sale.Timestamp.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if sale.Cashier != "" {
		pdf.CellFormat(contentW, 4, "Cashier: "+sale.Cashier, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.52 // item name
	col2 := contentW * 0.16 // qty or weight
	col3 := contentW * 0.32 // line total

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, it := range sale.Items {
		name := it.Name
		if len(name) > 22 {
			name = name[:21] + "…"
		}
		qty := fmt.Sprintf("x%d", it.Qty)
		if it.Unit == model.UnitKg {
			qty = it.Weight.StringFixed(3) + "kg"
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, qty, "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, it.LineTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	if !sale.Discount.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Discount:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "-"+sale.Discount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, sale.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Cash:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, sale.Cash.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(col1+col2, 4, "Change:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, sale.Change.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
