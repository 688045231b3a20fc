package mapping

import (
	"github.com/SscSPs/money_records_app/internal/core/domain"
	"github.com/SscSPs/money_records_app/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelTransaction converts a domain.Transaction to its stored form.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		ID:              d.ID,
		Date:            d.Date.UTC(),
		Description:     d.Description,
		Amount:          d.Amount.InexactFloat64(),
		Currency:        d.Currency,
		ConvertedAmount: d.ConvertedAmount.InexactFloat64(),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a stored transaction to a domain.Transaction.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:              m.ID,
		Date:            m.Date.UTC(),
		Description:     m.Description,
		Amount:          decimal.NewFromFloat(m.Amount),
		Currency:        m.Currency,
		ConvertedAmount: decimal.NewFromFloat(m.ConvertedAmount),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactions converts a slice of stored transactions.
func ToDomainTransactions(ms []models.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(ms))
	for i := range ms {
		out[i] = ToDomainTransaction(ms[i])
	}
	return out
}
