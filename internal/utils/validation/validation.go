package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/SscSPs/money_records_app/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Custom validation tags.
const (
	TagDDMMYYYY       = "ddmmyyyy"
	TagPositiveAmount = "positive_amount"
)

// Register adds the custom tags to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagDDMMYYYY, isDDMMYYYY); err != nil {
		return fmt.Errorf("register %s: %w", TagDDMMYYYY, err)
	}
	if err := v.RegisterValidation(TagPositiveAmount, isPositiveAmount); err != nil {
		return fmt.Errorf("register %s: %w", TagPositiveAmount, err)
	}
	return nil
}

// New returns a validator with the custom tags registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

func isDDMMYYYY(fl validator.FieldLevel) bool {
	_, err := domain.ParseTransactionDate(fl.Field().String())
	return err == nil
}

func isPositiveAmount(fl validator.FieldLevel) bool {
	amount, err := ParseAmount(fl.Field().String())
	return err == nil && IsStorableAmount(amount)
}

// IsStorableAmount reports whether d is positive and stays finite and positive once
// converted to float64, the stored representation.
func IsStorableAmount(d decimal.Decimal) bool {
	if !d.IsPositive() {
		return false
	}
	f := d.InexactFloat64()
	return f > 0 && !math.IsInf(f, 0)
}

// ParseAmount parses a decimal amount, ignoring surrounding whitespace.
func ParseAmount(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(value))
}
