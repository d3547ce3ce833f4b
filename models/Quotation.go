package models

import (
	"fmt"
	"time"
)

// QuotationStatus is the sales status of a saved quotation.
type QuotationStatus string

const (
	StatusDraft    QuotationStatus = "draft"
	StatusSent     QuotationStatus = "sent"
	StatusAccepted QuotationStatus = "accepted"
	StatusRejected QuotationStatus = "rejected"
)

func (s QuotationStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// PaymentTerms keys the payment sentence printed on the last page.
type PaymentTerms string

const (
	PaymentPrepayment PaymentTerms = "prepayment"
	PaymentCOD        PaymentTerms = "cod"
	Payment7Days      PaymentTerms = "7-days"
	Payment15Days     PaymentTerms = "15-days"
	Payment30Days     PaymentTerms = "30-days"
)

var paymentTermsText = map[PaymentTerms]string{
	PaymentPrepayment: "Full payment required before delivery",
	PaymentCOD:        "Cash on Delivery",
	Payment7Days:      "Payment within 7 days from invoice date",
	Payment15Days:     "Payment within 15 days from invoice date",
	Payment30Days:     "Payment within 30 days from invoice date",
}

func (p PaymentTerms) Valid() bool {
	_, ok := paymentTermsText[p]
	return ok
}

// Text returns the sentence printed in the terms block.
func (p PaymentTerms) Text() string {
	return paymentTermsText[p]
}

// ValidityPeriod is how long quoted prices are guaranteed.
type ValidityPeriod string

const (
	ValidityOneWeek  ValidityPeriod = "1-week"
	ValidityTwoWeeks ValidityPeriod = "2-weeks"
	ValidityOneMonth ValidityPeriod = "1-month"
)

func (v ValidityPeriod) Valid() bool {
	switch v {
	case ValidityOneWeek, ValidityTwoWeeks, ValidityOneMonth:
		return true
	}
	return false
}

// QuotationSender is the contact block printed in the document header.
type QuotationSender struct {
	Name  string `json:"name" example:"Somchai Prasert"`
	Email string `json:"email" example:"somchai@example.com"`
	Phone string `json:"phone" example:"+66 81 234 5678"`
}

// SenderFromUser derives a sender snapshot; users without a telephone cannot send.
func SenderFromUser(u User) (*QuotationSender, error) {
	if !u.HasContact() {
		return nil, fmt.Errorf("user %s has no contact telephone", u.Email)
	}
	return &QuotationSender{Name: u.Name, Email: u.Email, Phone: u.Telephone}, nil
}

// QuotationItem is a priced line frozen at save time.
type QuotationItem struct {
	ItemCode    string  `json:"itemCode" example:"BEV-0012"`
	Description string  `json:"description" example:"Mineral water 600ml x 12"`
	ListPrice   float64 `json:"listPrice" example:"120"`
	QuotePrice  float64 `json:"quotePrice" example:"108"`
	Discount    float64 `json:"discount" example:"10"`
}

// Quotation is an immutable snapshot of customer and items plus its lifecycle status.
type Quotation struct {
	ID             string           `json:"id" example:"5b0e6c2a-4a63-4d0f-8f0a-9d3f0b6b8e21"`
	Customer       Customer         `json:"customer"`
	Items          []QuotationItem  `json:"items"`
	CreatedAt      time.Time        `json:"createdAt" example:"2024-01-15T10:30:00Z"`
	Status         QuotationStatus  `json:"status" example:"draft"`
	PaymentTerms   PaymentTerms     `json:"paymentTerms" example:"cod"`
	ValidityPeriod ValidityPeriod   `json:"validityPeriod" example:"1-week"`
	ValidUntil     time.Time        `json:"validUntil" example:"2024-01-22T10:30:00Z"`
	Sender         *QuotationSender `json:"sender"`
}

// TotalQuote sums the quoted prices of all lines.
func (q Quotation) TotalQuote() float64 {
	var total float64
	for _, it := range q.Items {
		total += it.QuotePrice
	}
	return total
}

// Clone returns a deep copy so callers cannot alias store internals.
func (q Quotation) Clone() Quotation {
	out := q
	out.Items = append([]QuotationItem(nil), q.Items...)
	if q.Sender != nil {
		s := *q.Sender
		out.Sender = &s
	}
	return out
}

// DraftRequest is the API payload used to assemble a quotation.
type DraftRequest struct {
	Customer       Customer       `json:"customer" binding:"required"`
	Products       []Product      `json:"products"`
	PaymentTerms   PaymentTerms   `json:"paymentTerms" binding:"required" example:"cod"`
	ValidityPeriod ValidityPeriod `json:"validityPeriod" binding:"required" example:"1-week"`
	// SenderUserID selects the sender; empty means the caller.
	SenderUserID string `json:"senderUserId,omitempty"`
}

type StatusRequest struct {
	Status QuotationStatus `json:"status" binding:"required" example:"sent"`
}
