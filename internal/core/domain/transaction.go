package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the DD-MM-YYYY layout used by CSV rows and create requests.
// Single-digit days and months are accepted.
const DateLayout = "2-1-2006"

// Transaction is a single financial record. ConvertedAmount is Amount expressed in the
// base currency at the moment the record was written.
type Transaction struct {
	ID              string          `json:"id"`
	Date            time.Time       `json:"date"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	AuditFields
}

// Validate checks the fields the store requires before a write.
func (t *Transaction) Validate() error {
	if t.Date.IsZero() {
		return errors.New("date is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		return errors.New("description is required")
	}
	if !t.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if strings.TrimSpace(t.Currency) == "" {
		return errors.New("currency is required")
	}
	if t.ConvertedAmount.IsNegative() {
		return errors.New("converted amount cannot be negative")
	}
	return nil
}

// ParseTransactionDate parses a DD-MM-YYYY string into a UTC calendar day.
func ParseTransactionDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
}

// NormalizeCurrency trims and upper-cases a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
