package pgsql

import (
	portsrepo "github.com/SscSPs/money_records_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the PostgreSQL transaction store. rates is passed through.
func NewRepositoryProvider(dbPool *pgxpool.Pool, rates portsrepo.RateProvider) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TransactionRepo: newPgxTransactionRepository(dbPool),
		RateProvider:    rates,
	}
}
