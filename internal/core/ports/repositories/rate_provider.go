package repositories

import "context"

// RateProvider fetches the current conversion table for the base currency.
// rates[code] is how many units of code equal one unit of the base currency.
type RateProvider interface {
	FetchRates(ctx context.Context) (map[string]float64, error)
}
