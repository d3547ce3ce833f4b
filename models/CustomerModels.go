package models

import (
	"fmt"
	"time"
)

// Customer is a directory entry or a lead typed in by the sales user.
type Customer struct {
	CustomerCode string `json:"customerCode" example:"C-1"`
	CompanyName  string `json:"companyName" binding:"required" example:"Acme Trading Co."`
	SearchName   string `json:"searchName" example:"ACME"`
	IsLead       bool   `json:"isLead,omitempty" example:"false"`
}

// NewLeadCustomer synthesizes a customer that is not in the directory.
func NewLeadCustomer(companyName string, now time.Time) Customer {
	return Customer{
		CustomerCode: fmt.Sprintf("LEAD-%d", now.UnixMilli()),
		CompanyName:  companyName,
		SearchName:   companyName,
		IsLead:       true,
	}
}

// Product is a catalog line with an optional per-session price override.
type Product struct {
	ItemCode      string   `json:"itemCode" binding:"required" example:"BEV-0012"`
	Description   string   `json:"description" example:"Mineral water 600ml x 12"`
	UnitPrice     float64  `json:"unitPrice" example:"120"`
	ModifiedPrice *float64 `json:"modifiedPrice,omitempty" example:"108"`
	Vendor        string   `json:"vendor,omitempty" example:"Siam Beverages"`
	Stock         int      `json:"stock,omitempty" example:"340"`
}

// QuotePrice is the override when present, otherwise the list price.
func (p Product) QuotePrice() float64 {
	if p.ModifiedPrice != nil {
		return *p.ModifiedPrice
	}
	return p.UnitPrice
}
