// Package receipt renders fee payment receipts as PDF documents.
package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

type Data struct {
	InstituteName string
	ApplicationID uint
	StudentName   string
	Email         string
	Amount        string
	Currency      string
	PaymentID     string
	Method        string
	PaidAt        time.Time
}

func Generate(d Data) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(20, 60, 120)
	pdf.CellFormat(0, 10, d.InstituteName, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, "Fee Payment Receipt", "1", 1, "C", false, 0, "")

	addRow(pdf, "Application ID", fmt.Sprintf("%d", d.ApplicationID), true)
	addRow(pdf, "Student", d.StudentName, true)
	addRow(pdf, "Email", d.Email, false)
	addRow(pdf, "Payment reference", d.PaymentID, false)
	if d.Method != "" {
		addRow(pdf, "Method", d.Method, false)
	}
	addRow(pdf, "Paid on", d.PaidAt.Format("2006-01-02 15:04 MST"), false)

	pdf.SetFont("Arial", "B", 13)
	addRow(pdf, "Amount paid", fmt.Sprintf("%s %s", d.Currency, d.Amount), true)

	pdf.SetY(pdf.GetY() + 12)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 10, "This is a computer generated receipt", "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addRow(pdf *gofpdf.Fpdf, label, value string, bold bool) {
	if bold {
		pdf.SetFont("Arial", "B", 12)
	} else {
		pdf.SetFont("Arial", "", 10)
	}
	pdf.CellFormat(50, 10, label, "1", 0, "", false, 0, "")
	pdf.CellFormat(0, 10, value, "1", 1, "", false, 0, "")
}
