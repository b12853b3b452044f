package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/avdonin/contracts-lite/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders a one-page contract card.
func (g *Generator) Generate(contract model.Contract) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Contract card", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Contract No. %s", contract.Number), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Valid from %s to %s", formatDate(contract.StartDate), formatDate(contract.EndDate)), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Number", contract.Number},
		{"Client", safeValue(contract.ClientName)},
		{"Principal", fmt.Sprintf("%.2f", contract.Principal)},
		{"Status", string(contract.Status)},
		{"Start date", formatDate(contract.StartDate)},
		{"End date", formatDate(contract.EndDate)},
		{"Created at", formatDateTime(contract.CreatedAt)},
	}

	pdf.SetFont(g.fontName, "", 10)
	for _, row := range rows {
		pdf.SetFont(g.fontName, "B", 10)
		pdf.CellFormat(50, 8, row[0], "1", 0, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 8, row[1], "1", 1, "L", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, "Client: ______________________", "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.CellFormat(0, 6, "Manager: ______________________", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006 15:04")
}
