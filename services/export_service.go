package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fabienng71/Rclx-sub001/models"
)

const exportDateLayout = "2006-01-02 15:04"

var quotationColumns = []string{
	"ID", "Created", "Customer Code", "Company", "Status",
	"Payment Terms", "Valid Until", "Items", "Total Quote", "Sender",
}

var loginColumns = []string{"Timestamp", "Email", "Result", "IP Address", "User Agent"}

// RegisterExporter writes spreadsheet registers of quotations and login attempts.
type RegisterExporter struct {
	lang language.Tag
}

func NewRegisterExporter() *RegisterExporter {
	return &RegisterExporter{lang: language.Und}
}

// WriteQuotations writes an XLSX workbook with one sheet per collection.
func (e *RegisterExporter) WriteQuotations(w io.Writer, active, archived []models.Quotation) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Active"); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet("Archived"); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	// Casers keep state and are not shared across calls.
	titleCaser := cases.Title(e.lang)

	for sheet, list := range map[string][]models.Quotation{"Active": active, "Archived": archived} {
		if err := writeHeader(f, sheet, quotationColumns, header); err != nil {
			return err
		}
		for i, q := range list {
			sender := ""
			if q.Sender != nil {
				sender = q.Sender.Name
			}
			row := []interface{}{
				q.ID,
				q.CreatedAt.Format(exportDateLayout),
				q.Customer.CustomerCode,
				q.Customer.CompanyName,
				titleCaser.String(string(q.Status)),
				q.PaymentTerms.Text(),
				q.ValidUntil.Format("2006-01-02"),
				len(q.Items),
				q.TotalQuote(),
				sender,
			}
			if err := writeRow(f, sheet, i+2, row); err != nil {
				return err
			}
		}
		f.SetColWidth(sheet, "A", "A", 38)
		f.SetColWidth(sheet, "D", "D", 30)
		f.SetColWidth(sheet, "F", "F", 40)
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

// SaveQuotationRegister writes the register to dir as quotations-YYYYMMDD.xlsx and returns the path.
func (e *RegisterExporter) SaveQuotationRegister(dir string, day time.Time, active, archived []models.Quotation) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("quotations-%s.xlsx", day.Format("20060102")))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := e.WriteQuotations(out, active, archived); err != nil {
		out.Close()
		return "", err
	}
	return path, out.Close()
}

// WriteLoginJournal writes the journal, newest first, to a single "Logins" sheet.
func (e *RegisterExporter) WriteLoginJournal(w io.Writer, attempts []models.LoginAttempt) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Logins"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := writeHeader(f, sheet, loginColumns, header); err != nil {
		return err
	}
	for i, a := range attempts {
		result := "Failed"
		if a.Success {
			result = "Success"
		}
		row := []interface{}{a.Timestamp.Format(exportDateLayout), a.Email, result, a.IPAddress, a.UserAgent}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	f.SetColWidth(sheet, "A", "B", 28)
	f.SetColWidth(sheet, "E", "E", 50)
	return f.Write(w)
}

func headerStyle(f *excelize.File) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Family: "Arial", Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}
	return style, nil
}

func writeHeader(f *excelize.File, sheet string, columns []string, style int) error {
	cells := make([]interface{}, len(columns))
	for i, c := range columns {
		cells[i] = c
	}
	if err := writeRow(f, sheet, 1, cells); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
