package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/avdonin/contracts-lite/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the contract register as a single-sheet workbook: a small
// summary block followed by one row per contract.
func (g *Generator) Generate(register model.ContractRegister) ([]byte, error) {
	file := excelize.NewFile()

	const sheet = "Register"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Contract register")
	set("A2", "Generated at")
	set("B2", formatDateTime(register.GeneratedAt))
	set("A3", "Contracts matched")
	set("B3", register.Total)

	tableRow := 5
	headers := []string{
		"ID",
		"Number",
		"Client",
		"Principal",
		"Status",
		"Start date",
		"End date",
		"Created at",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, tableRow)
		if err != nil {
			return nil, err
		}
		set(cell, header)
	}

	for i, contract := range register.Contracts {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), contract.ID)
		set(fmt.Sprintf("B%d", row), contract.Number)
		set(fmt.Sprintf("C%d", row), contract.ClientName)
		set(fmt.Sprintf("D%d", row), fmt.Sprintf("%.2f", contract.Principal))
		set(fmt.Sprintf("E%d", row), string(contract.Status))
		set(fmt.Sprintf("F%d", row), formatDate(contract.StartDate))
		set(fmt.Sprintf("G%d", row), formatDate(contract.EndDate))
		set(fmt.Sprintf("H%d", row), formatDateTime(contract.CreatedAt))
	}

	_ = file.SetColWidth(sheet, "A", "A", 8)
	_ = file.SetColWidth(sheet, "B", "B", 20)
	_ = file.SetColWidth(sheet, "C", "C", 40)
	_ = file.SetColWidth(sheet, "D", "E", 14)
	_ = file.SetColWidth(sheet, "F", "H", 20)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
