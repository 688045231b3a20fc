package repositories

import (
	"context"

	"github.com/SscSPs/money_records_app/internal/core/domain"
)

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a specific transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves one page of transactions matching the filter, ordered by
	// date descending then ID ascending, together with the total number of matches.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter, page domain.PageRequest) ([]domain.Transaction, int64, error)
}

// TransactionWriter defines write operations for transaction data
type TransactionWriter interface {
	// SaveTransaction persists a single new transaction.
	SaveTransaction(ctx context.Context, transaction domain.Transaction) error

	// SaveTransactions persists a batch of new transactions in one store call.
	SaveTransactions(ctx context.Context, transactions []domain.Transaction) error

	// UpdateTransaction replaces the stored fields of an existing transaction.
	UpdateTransaction(ctx context.Context, transaction domain.Transaction) error

	// DeleteTransaction removes a transaction.
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
// This is a facade for clients that need access to all operations
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
