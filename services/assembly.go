package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fabienng71/Rclx-sub001/models"
	"github.com/fabienng71/Rclx-sub001/utils"
)

var hundred = decimal.NewFromInt(100)

// CalculateValidUntil adds the validity period to ref using calendar arithmetic.
// A month is time.AddDate(0, 1, 0), so Jan 31 rolls over into March.
func CalculateValidUntil(period models.ValidityPeriod, ref time.Time) (time.Time, error) {
	switch period {
	case models.ValidityOneWeek:
		return ref.AddDate(0, 0, 7), nil
	case models.ValidityTwoWeeks:
		return ref.AddDate(0, 0, 14), nil
	case models.ValidityOneMonth:
		return ref.AddDate(0, 1, 0), nil
	}
	return time.Time{}, fmt.Errorf("unknown validity period %q", period)
}

// Discount returns (list - quote) / list * 100. Positive is a discount, negative a markup.
// It is 0 when list is not positive or the prices match.
func Discount(list, quote float64) float64 {
	if list <= 0 || quote == list {
		return 0
	}
	l := decimal.NewFromFloat(list)
	pct := l.Sub(decimal.NewFromFloat(quote)).Div(l).Mul(hundred)
	f, _ := pct.Float64()
	return f
}

// DraftInput is everything a draft is assembled from. Sender may be nil; saving
// such a draft is refused by the quotation store.
type DraftInput struct {
	Customer       models.Customer
	Products       []models.Product
	Sender         *models.QuotationSender
	ValidityPeriod models.ValidityPeriod
	PaymentTerms   models.PaymentTerms
}

// BuildDraft snapshots the selection into a new draft quotation.
func BuildDraft(in DraftInput, clock utils.Clock) (models.Quotation, error) {
	if !in.PaymentTerms.Valid() {
		return models.Quotation{}, fmt.Errorf("unknown payment terms %q", in.PaymentTerms)
	}
	if clock == nil {
		clock = utils.SystemClock{}
	}
	now := clock.Now()
	validUntil, err := CalculateValidUntil(in.ValidityPeriod, now)
	if err != nil {
		return models.Quotation{}, err
	}

	items := make([]models.QuotationItem, 0, len(in.Products))
	for _, p := range in.Products {
		quote := p.QuotePrice()
		items = append(items, models.QuotationItem{
			ItemCode:    p.ItemCode,
			Description: p.Description,
			ListPrice:   p.UnitPrice,
			QuotePrice:  quote,
			Discount:    Discount(p.UnitPrice, quote),
		})
	}

	var sender *models.QuotationSender
	if in.Sender != nil {
		s := *in.Sender
		sender = &s
	}

	return models.Quotation{
		ID:             uuid.NewString(),
		Customer:       in.Customer,
		Items:          items,
		CreatedAt:      now,
		Status:         models.StatusDraft,
		PaymentTerms:   in.PaymentTerms,
		ValidityPeriod: in.ValidityPeriod,
		ValidUntil:     validUntil,
		Sender:         sender,
	}, nil
}

// DraftFromRequest resolves the customer and sender of a request and builds the draft.
// An empty customer code makes the customer a lead; a sender without a telephone is dropped.
func DraftFromRequest(req models.DraftRequest, senderUser models.User, clock utils.Clock) (models.Quotation, error) {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	customer := req.Customer
	if strings.TrimSpace(customer.CustomerCode) == "" {
		if strings.TrimSpace(customer.CompanyName) == "" {
			return models.Quotation{}, errors.New("customer code or company name is required")
		}
		customer = models.NewLeadCustomer(customer.CompanyName, clock.Now())
	}
	sender, _ := models.SenderFromUser(senderUser)

	return BuildDraft(DraftInput{
		Customer:       customer,
		Products:       req.Products,
		Sender:         sender,
		ValidityPeriod: req.ValidityPeriod,
		PaymentTerms:   req.PaymentTerms,
	}, clock)
}
