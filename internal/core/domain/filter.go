package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionFilter narrows a transaction listing. Nil fields are not applied; the
// remaining ones are AND-combined. Bounds are inclusive.
type TransactionFilter struct {
	DateFrom            *time.Time
	DateTo              *time.Time
	AmountMin           *decimal.Decimal
	AmountMax           *decimal.Decimal
	DescriptionContains string
}

// PageRequest selects a 1-based page of Size records.
type PageRequest struct {
	Page int
	Size int
}

// Offset returns how many records precede the requested page. It saturates at
// math.MaxInt instead of overflowing.
func (p PageRequest) Offset() int {
	if p.Page < 1 || p.Size < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Size
}

// Valid reports whether both page and size are at least one and the page offset
// fits in an int.
func (p PageRequest) Valid() bool {
	return p.Page >= 1 && p.Size >= 1 && p.Page-1 <= math.MaxInt/p.Size
}
