package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/money_records_app/internal/apperrors"
	"github.com/SscSPs/money_records_app/internal/core/domain"
	portsrepo "github.com/SscSPs/money_records_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, date, description, amount, currency, converted_amount, created_at, last_updated_at`

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

// toNumeric converts a decimal for COPY, which only speaks the binary protocol.
func toNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.ID,
		&t.Date,
		&t.Description,
		&t.Amount,
		&t.Currency,
		&t.ConvertedAmount,
		&t.CreatedAt,
		&t.LastUpdatedAt,
	)
	t.Date = t.Date.UTC()
	return t, err
}

// SaveTransaction inserts a single transaction.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, t domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err := r.Pool.Exec(ctx, query,
		t.ID, t.Date.UTC(), t.Description, t.Amount, t.Currency, t.ConvertedAmount, t.CreatedAt, t.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", t.ID, err)
	}
	return nil
}

// SaveTransactions bulk-loads a batch with COPY inside one database transaction.
func (r *PgxTransactionRepository) SaveTransactions(ctx context.Context, txns []domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	dbTx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Rollback(ctx, dbTx)
	}()

	rows := make([][]any, len(txns))
	for i, t := range txns {
		rows[i] = []any{t.ID, t.Date.UTC(), t.Description, toNumeric(t.Amount), t.Currency, toNumeric(t.ConvertedAmount), t.CreatedAt, t.LastUpdatedAt}
	}

	copied, err := dbTx.CopyFrom(ctx,
		pgx.Identifier{"transactions"},
		[]string{"id", "date", "description", "amount", "currency", "converted_amount", "created_at", "last_updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy %d transactions: %w", len(txns), err)
	}
	if int(copied) != len(txns) {
		return fmt.Errorf("copied %d of %d transactions", copied, len(txns))
	}

	return r.Commit(ctx, dbTx)
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1;`
	t, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("transaction " + transactionID + " not found")
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return &t, nil
}

// ListTransactions runs a count query and a page query over the same WHERE clause.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter, page domain.PageRequest) ([]domain.Transaction, int64, error) {
	if !page.Valid() {
		return nil, 0, apperrors.NewValidationError("invalid pagination parameters")
	}
	where, args := buildWhere(filter)

	var total int64
	if err := r.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM transactions"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	if total == 0 {
		return []domain.Transaction{}, 0, nil
	}

	query := "SELECT " + transactionColumns + " FROM transactions" + where +
		fmt.Sprintf(" ORDER BY date DESC, id ASC LIMIT $%d OFFSET $%d;", len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Transaction, error) {
		return scanTransaction(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan transactions: %w", err)
	}
	return txns, total, nil
}

// UpdateTransaction overwrites the mutable fields of an existing transaction.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, t domain.Transaction) error {
	query := `
		UPDATE transactions
		SET date = $2, description = $3, amount = $4, currency = $5, converted_amount = $6, last_updated_at = $7
		WHERE id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, t.ID, t.Date.UTC(), t.Description, t.Amount, t.Currency, t.ConvertedAmount, t.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteTransaction removes a transaction by ID.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1;`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
