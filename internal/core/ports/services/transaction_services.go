package services

import (
	"context"
	"io"

	"github.com/SscSPs/money_records_app/internal/core/domain"
	"github.com/SscSPs/money_records_app/internal/dto"
	"github.com/shopspring/decimal"
)

// TransactionReaderSvc defines read operations for transaction data
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves a specific transaction by its unique identifier.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a filtered, paginated list of transactions.
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransactionWriterSvc defines write operations for transaction data
type TransactionWriterSvc interface {
	// CreateTransaction converts and persists a new transaction.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error)

	// UpdateTransaction applies a partial update and recomputes the converted amount.
	UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error)

	// DeleteTransaction removes a transaction.
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// TransactionSvcFacade combines all transaction-related service interfaces
// This is a facade for clients that need access to all operations
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}

// ImportSvc ingests delimited transaction files.
type ImportSvc interface {
	// ImportTransactions streams rows from src, validates and converts each one, and
	// persists the accepted rows in a single batch.
	ImportTransactions(ctx context.Context, src io.Reader) (*domain.ImportResult, error)
}

// CurrencyConverterSvc converts amounts into the base currency.
type CurrencyConverterSvc interface {
	// ConvertToBase never fails; on any provider problem it returns the amount unchanged
	// with Degraded set.
	ConvertToBase(ctx context.Context, amount decimal.Decimal, currencyCode string) domain.Conversion
}
