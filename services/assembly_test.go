package services

import (
	"math"
	"testing"
	"time"

	"github.com/fabienng71/Rclx-sub001/models"
	"github.com/fabienng71/Rclx-sub001/utils"
)

func TestCalculateValidUntil(t *testing.T) {
	ref := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		period models.ValidityPeriod
		want   time.Time
	}{
		{models.ValidityOneWeek, time.Date(2024, 1, 17, 15, 0, 0, 0, time.UTC)},
		{models.ValidityTwoWeeks, time.Date(2024, 1, 24, 15, 0, 0, 0, time.UTC)},
		{models.ValidityOneMonth, time.Date(2024, 2, 10, 15, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := CalculateValidUntil(tt.period, ref)
		if err != nil {
			t.Fatalf("%s: %v", tt.period, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.period, tt.want, got)
		}
	}

	if _, err := CalculateValidUntil("3-days", ref); err == nil {
		t.Fatal("expected error for unknown period")
	}
}

func TestCalculateValidUntilMonthRollover(t *testing.T) {
	// Jan 31 + 1 month normalizes past the end of February.
	got, _ := CalculateValidUntil(models.ValidityOneMonth, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	if want := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name        string
		list, quote float64
		want        float64
	}{
		{"discount", 100, 90, 10},
		{"markup", 100, 125, -25},
		{"same price", 80, 80, 0},
		{"zero list price", 0, 50, 0},
		{"negative list price", -10, 5, 0},
		{"fractional", 120, 108, 10},
		{"third", 3, 2, 33.333333333333336},
	}
	for _, tt := range tests {
		got := Discount(tt.list, tt.quote)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("%s: discount must be finite, got %v", tt.name, got)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestBuildDraft(t *testing.T) {
	clock := &utils.FixedClock{T: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	override := 45.0
	in := DraftInput{
		Customer: models.Customer{CustomerCode: "C-1", CompanyName: "Acme"},
		Products: []models.Product{
			{ItemCode: "A", Description: "Alpha", UnitPrice: 50, ModifiedPrice: &override},
			{ItemCode: "B", Description: "Beta", UnitPrice: 20},
			{ItemCode: "C", Description: "Free sample", UnitPrice: 0},
		},
		Sender:         &models.QuotationSender{Name: "Rep", Email: "rep@x", Phone: "1"},
		ValidityPeriod: models.ValidityTwoWeeks,
		PaymentTerms:   models.Payment30Days,
	}

	q, err := BuildDraft(in, clock)
	if err != nil {
		t.Fatalf("build draft: %v", err)
	}
	if q.ID == "" || q.Status != models.StatusDraft {
		t.Fatalf("expected a fresh draft, got id=%q status=%q", q.ID, q.Status)
	}
	if !q.CreatedAt.Equal(clock.T) || !q.ValidUntil.Equal(clock.T.AddDate(0, 0, 14)) {
		t.Fatalf("unexpected dates: created=%v validUntil=%v", q.CreatedAt, q.ValidUntil)
	}
	if len(q.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(q.Items))
	}
	if it := q.Items[0]; it.QuotePrice != 45 || it.Discount != 10 {
		t.Fatalf("override not applied: %+v", it)
	}
	if it := q.Items[1]; it.QuotePrice != 20 || it.Discount != 0 {
		t.Fatalf("quote price should default to list price: %+v", it)
	}
	if it := q.Items[2]; it.Discount != 0 {
		t.Fatalf("zero list price must give the 0 sentinel: %+v", it)
	}

	in.Sender.Name = "Changed"
	if q.Sender.Name != "Rep" {
		t.Fatal("draft must hold its own copy of the sender")
	}

	other, _ := BuildDraft(in, clock)
	if other.ID == q.ID {
		t.Fatal("every draft needs a unique id")
	}
}

func TestBuildDraftRejectsUnknownTerms(t *testing.T) {
	_, err := BuildDraft(DraftInput{PaymentTerms: "net-90", ValidityPeriod: models.ValidityOneWeek}, nil)
	if err == nil {
		t.Fatal("expected error for unknown payment terms")
	}
	_, err = BuildDraft(DraftInput{PaymentTerms: models.PaymentCOD, ValidityPeriod: "forever"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown validity period")
	}
}

func TestDraftFromRequest(t *testing.T) {
	clock := &utils.FixedClock{T: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	rep := models.User{Name: "Rep", Email: "rep@x", Telephone: "+66 1"}
	req := models.DraftRequest{
		Customer:       models.Customer{CompanyName: "Walk-in Trader"},
		Products:       []models.Product{{ItemCode: "A", UnitPrice: 10}},
		PaymentTerms:   models.PaymentPrepayment,
		ValidityPeriod: models.ValidityOneMonth,
	}

	q, err := DraftFromRequest(req, rep, clock)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if !q.Customer.IsLead || q.Customer.CustomerCode != "LEAD-1717236000000" {
		t.Fatalf("expected lead customer, got %+v", q.Customer)
	}
	if q.Sender == nil || q.Sender.Phone != "+66 1" {
		t.Fatalf("unexpected sender %+v", q.Sender)
	}

	rep.Telephone = ""
	q, err = DraftFromRequest(req, rep, clock)
	if err != nil || q.Sender != nil {
		t.Fatalf("a user without telephone gives no sender, got %+v err=%v", q.Sender, err)
	}

	req.Customer = models.Customer{}
	if _, err := DraftFromRequest(req, rep, clock); err == nil {
		t.Fatal("expected error for a customer without code or name")
	}
}
