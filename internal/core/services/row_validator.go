package services

import (
	"errors"
	"strings"

	"github.com/SscSPs/money_records_app/internal/core/domain"
	"github.com/SscSPs/money_records_app/internal/utils/validation"
	"github.com/go-playground/validator/v10"
)

// rowFields mirrors a CSV row. Field order fixes which failure is reported first.
type rowFields struct {
	Date     string `validate:"ddmmyyyy"`
	Amount   string `validate:"positive_amount"`
	Currency string `validate:"required"`
}

var rowValidate = validation.New()

var rejectReasons = map[string]domain.RejectReason{
	"Date":     domain.RejectInvalidDate,
	"Amount":   domain.RejectInvalidAmount,
	"Currency": domain.RejectMissingCurrency,
}

// ValidateRow checks a raw CSV row and returns its typed form, or the first rejection
// in date, amount, currency order. The rejection's Row is left for the caller to set.
func ValidateRow(row domain.RawRow) (domain.ValidRow, *domain.RowRejection) {
	in := rowFields{
		Date:     strings.TrimSpace(row[domain.ColumnDate]),
		Amount:   strings.TrimSpace(row[domain.ColumnAmount]),
		Currency: domain.NormalizeCurrency(row[domain.ColumnCurrency]),
	}

	if err := rowValidate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return domain.ValidRow{}, &domain.RowRejection{
				Reason: rejectReasons[first.StructField()],
				Value:  row[first.StructField()],
			}
		}
		return domain.ValidRow{}, &domain.RowRejection{Reason: domain.RejectInvalidDate}
	}

	// Both parse: the custom tags above already accepted them.
	date, _ := domain.ParseTransactionDate(in.Date)
	amount, _ := validation.ParseAmount(in.Amount)

	return domain.ValidRow{
		Date:        date,
		Description: row[domain.ColumnDescription],
		Amount:      amount,
		Currency:    in.Currency,
	}, nil
}
