package services

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fabienng71/Rclx-sub001/models"
)

func exportQuotation(id string, status models.QuotationStatus) models.Quotation {
	return models.Quotation{
		ID:           id,
		Customer:     models.Customer{CustomerCode: "C-7", CompanyName: "Bangkok Foods"},
		Items:        []models.QuotationItem{{ItemCode: "A", QuotePrice: 10}, {ItemCode: "B", QuotePrice: 5.5}},
		CreatedAt:    time.Date(2024, 2, 3, 4, 5, 0, 0, time.UTC),
		Status:       status,
		PaymentTerms: models.Payment7Days,
		ValidUntil:   time.Date(2024, 2, 10, 4, 5, 0, 0, time.UTC),
		Sender:       &models.QuotationSender{Name: "Rep"},
	}
}

func TestWriteQuotations(t *testing.T) {
	var buf bytes.Buffer
	active := []models.Quotation{exportQuotation("q-1", models.StatusAccepted)}
	archived := []models.Quotation{exportQuotation("q-2", models.StatusRejected), exportQuotation("q-3", models.StatusDraft)}
	if err := NewRegisterExporter().WriteQuotations(&buf, active, archived); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Active")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != "q-1" || rows[1][4] != "Accepted" {
		t.Fatalf("unexpected Active sheet: %v", rows)
	}
	if rows[1][5] != "Payment within 7 days from invoice date" || rows[1][8] != "15.5" {
		t.Fatalf("unexpected Active row: %v", rows[1])
	}

	rows, err = f.GetRows("Archived")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[1][0] != "q-2" || rows[2][4] != "Draft" {
		t.Fatalf("unexpected Archived sheet: %v", rows)
	}
}

func TestWriteLoginJournal(t *testing.T) {
	var buf bytes.Buffer
	attempts := []models.LoginAttempt{
		{Email: "a@x", Success: true, Timestamp: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), IPAddress: "1.2.3.4"},
		{Email: "b@x", Success: false, Timestamp: time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)},
	}
	if err := NewRegisterExporter().WriteLoginJournal(&buf, attempts); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, _ := f.GetRows("Logins")
	if len(rows) != 3 || rows[1][2] != "Success" || rows[2][2] != "Failed" {
		t.Fatalf("unexpected Logins sheet: %v", rows)
	}
}

func TestSaveQuotationRegister(t *testing.T) {
	dir := t.TempDir()
	path, err := NewRegisterExporter().SaveQuotationRegister(filepath.Join(dir, "reports"), time.Date(2024, 9, 30, 23, 30, 0, 0, time.UTC), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "quotations-20240930.xlsx" {
		t.Fatalf("unexpected file name %s", path)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("register file missing: %v", err)
	}
}
