package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/money_records_app/internal/core/domain"
	portsrepo "github.com/SscSPs/money_records_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_records_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// Reasons recorded on a degraded conversion.
const (
	ReasonProviderUnavailable = "provider_unavailable"
	ReasonUnknownCurrency     = "unknown_currency"
	ReasonInvalidRate         = "invalid_rate"
)

type currencyConverter struct {
	BaseService
	provider     portsrepo.RateProvider
	baseCurrency string
}

// NewCurrencyConverter creates a converter into baseCurrency backed by provider.
func NewCurrencyConverter(provider portsrepo.RateProvider, baseCurrency string) portssvc.CurrencyConverterSvc {
	return &currencyConverter{
		provider:     provider,
		baseCurrency: domain.NormalizeCurrency(baseCurrency),
	}
}

var _ portssvc.CurrencyConverterSvc = (*currencyConverter)(nil)

// ConvertToBase divides amount by the provider rate for currencyCode. Any failure falls
// back to the unconverted amount and is logged, not returned.
func (s *currencyConverter) ConvertToBase(ctx context.Context, amount decimal.Decimal, currencyCode string) domain.Conversion {
	code := domain.NormalizeCurrency(currencyCode)
	if code == s.baseCurrency {
		return domain.Conversion{Amount: amount, Rate: decimal.NewFromInt(1)}
	}

	rates, err := s.provider.FetchRates(ctx)
	if err != nil {
		s.LogWarn(ctx, "Rate provider unavailable, storing unconverted amount",
			slog.String("currency", code),
			slog.String("error", err.Error()))
		return degraded(amount, ReasonProviderUnavailable)
	}

	rate, ok := rates[code]
	if !ok {
		s.LogWarn(ctx, "Currency missing from rate table, storing unconverted amount", slog.String("currency", code))
		return degraded(amount, ReasonUnknownCurrency)
	}
	if rate <= 0 {
		s.LogWarn(ctx, "Non-positive rate from provider, storing unconverted amount",
			slog.String("currency", code),
			slog.Float64("rate", rate))
		return degraded(amount, ReasonInvalidRate)
	}

	r := decimal.NewFromFloat(rate)
	return domain.Conversion{Amount: amount.Div(r), Rate: r}
}

func degraded(amount decimal.Decimal, reason string) domain.Conversion {
	return domain.Conversion{
		Amount:   amount,
		Rate:     decimal.NewFromInt(1),
		Degraded: true,
		Reason:   reason,
	}
}
