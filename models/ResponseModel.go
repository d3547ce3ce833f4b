package models

import "time"

type ErrorResponse struct {
	Error string `json:"error" example:"invalid credentials"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Quotation archived"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"somchai@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

type LoginResponse struct {
	Message     string    `json:"message" example:"Login successful"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at" example:"2024-01-15T11:00:00Z"`
	IsAdmin     bool      `json:"is_admin" example:"false"`
	User        User      `json:"user"`
}

type LoginJournalPage struct {
	Data       []LoginAttempt `json:"data"`
	Page       int            `json:"page" example:"1"`
	Limit      int            `json:"limit" example:"10"`
	Total      int            `json:"total" example:"42"`
	TotalPages int            `json:"total_pages" example:"5"`
	HasNext    bool           `json:"has_next" example:"true"`
	HasPrev    bool           `json:"has_prev" example:"false"`
}

type QuotationResponse struct {
	Quotation Quotation `json:"quotation"`
	Archived  bool      `json:"archived" example:"false"`
}

type MailtoResponse struct {
	URI string `json:"uri" example:"mailto:buyer@example.com?subject=Quotation"`
}
