package mapping_test

import (
	"testing"
	"time"

	"github.com/SscSPs/money_records_app/internal/core/domain"
	"github.com/SscSPs/money_records_app/internal/utils/mapping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionMapping_NormalizesToUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	d := domain.Transaction{
		ID:              "id-1",
		Date:            time.Date(2024, 1, 15, 5, 30, 0, 0, ist),
		Description:     "Rent",
		Amount:          decimal.RequireFromString("1500.25"),
		Currency:        "INR",
		ConvertedAmount: decimal.RequireFromString("1500.25"),
		AuditFields:     domain.AuditFields{CreatedAt: time.Date(2024, 1, 15, 6, 0, 0, 0, ist)},
	}

	m := mapping.ToModelTransaction(d)

	assert.Equal(t, time.UTC, m.Date.Location())
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), m.Date)
	assert.Equal(t, 1500.25, m.Amount)

	back := mapping.ToDomainTransaction(m)
	assert.True(t, d.Amount.Equal(back.Amount))
	assert.True(t, d.Date.Equal(back.Date))
}
