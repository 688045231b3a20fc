package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CSV column names expected in the header row of an import.
const (
	ColumnDate        = "Date"
	ColumnDescription = "Description"
	ColumnAmount      = "Amount"
	ColumnCurrency    = "Currency"
)

// RawRow is one CSV record keyed by header column name. It never leaves the import.
type RawRow map[string]string

// RejectReason explains why a row was left out of an import.
type RejectReason string

const (
	RejectInvalidDate     RejectReason = "invalid_date"
	RejectInvalidAmount   RejectReason = "invalid_amount"
	RejectMissingCurrency RejectReason = "missing_currency"
)

// RowRejection records a dropped row. Row is the 1-based data row number (header excluded).
type RowRejection struct {
	Row    int          `json:"row"`
	Reason RejectReason `json:"reason"`
	Value  string       `json:"value,omitempty"`
}

// ValidRow is a raw row that passed validation, with typed fields.
type ValidRow struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Currency    string
}

// Conversion is the outcome of converting an amount to the base currency.
// Degraded is set when the identity fallback was used; Reason says why.
type Conversion struct {
	Amount   decimal.Decimal
	Rate     decimal.Decimal
	Degraded bool
	Reason   string
}

// ImportResult summarizes a successful import.
type ImportResult struct {
	Inserted int
	Rejected []RowRejection
	// Degraded lists the row numbers stored with an unconverted amount.
	Degraded []int
}
