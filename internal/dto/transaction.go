package dto

import (
	"time"

	"github.com/SscSPs/money_records_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Default page values applied when the query string omits them.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// CreateTransactionRequest defines the data needed to create a transaction.
type CreateTransactionRequest struct {
	Date        string          `json:"date" binding:"required,ddmmyyyy" example:"15-01-2024"`
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"number" example:"100.50"`
	Currency    string          `json:"currency" binding:"required" example:"USD"`
}

// UpdateTransactionRequest carries a partial update. Nil fields are left unchanged.
// The converted amount is always recomputed from the resulting amount and currency.
type UpdateTransactionRequest struct {
	Date        *string          `json:"date,omitempty" binding:"omitempty,ddmmyyyy" example:"15-01-2024"`
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty" swaggertype:"number"`
	Currency    *string          `json:"currency,omitempty"`
}

// ListTransactionsParams holds the raw query string of a listing request.
type ListTransactionsParams struct {
	StartDate   string `form:"startDate"`
	EndDate     string `form:"endDate"`
	MinAmount   string `form:"minAmount"`
	MaxAmount   string `form:"maxAmount"`
	Description string `form:"description"`
	Page        string `form:"page"`
	Limit       string `form:"limit"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	ID              string          `json:"id"`
	Date            time.Time       `json:"date"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"number"`
	Currency        string          `json:"currency"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount" swaggertype:"number"`
	CreatedAt       time.Time       `json:"createdAt"`
	LastUpdatedAt   time.Time       `json:"lastUpdatedAt"`
}

// ListTransactionsResponse is one page of transactions plus the unpaginated match count.
type ListTransactionsResponse struct {
	Total        int64                 `json:"total"`
	Transactions []TransactionResponse `json:"transactions"`
}

// UploadResponse is returned after a successful CSV import.
type UploadResponse struct {
	Message  string                `json:"message"`
	Inserted int                   `json:"inserted"`
	Rejected []domain.RowRejection `json:"rejected"`
	Degraded []int                 `json:"degraded"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		Date:            t.Date,
		Description:     t.Description,
		Amount:          t.Amount,
		Currency:        t.Currency,
		ConvertedAmount: t.ConvertedAmount,
		CreatedAt:       t.CreatedAt,
		LastUpdatedAt:   t.LastUpdatedAt,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ToUploadResponse converts an import result into the upload response body.
func ToUploadResponse(message string, result *domain.ImportResult) UploadResponse {
	resp := UploadResponse{
		Message:  message,
		Inserted: result.Inserted,
		Rejected: result.Rejected,
		Degraded: result.Degraded,
	}
	if resp.Rejected == nil {
		resp.Rejected = []domain.RowRejection{}
	}
	if resp.Degraded == nil {
		resp.Degraded = []int{}
	}
	return resp
}
