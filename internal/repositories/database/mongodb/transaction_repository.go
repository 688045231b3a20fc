package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/money_records_app/internal/apperrors"
	"github.com/SscSPs/money_records_app/internal/core/domain"
	portsrepo "github.com/SscSPs/money_records_app/internal/core/ports/repositories"
	"github.com/SscSPs/money_records_app/internal/models"
	"github.com/SscSPs/money_records_app/internal/utils/mapping"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TransactionRepository stores transactions as documents in one collection.
type TransactionRepository struct {
	provider CollectionProvider
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(provider CollectionProvider) *TransactionRepository {
	return &TransactionRepository{provider: provider}
}

var _ portsrepo.TransactionRepositoryFacade = (*TransactionRepository)(nil)

func (r *TransactionRepository) collection() DataStore {
	return r.provider.Collection(TransactionsCollection)
}

// SaveTransaction inserts a single transaction document.
func (r *TransactionRepository) SaveTransaction(ctx context.Context, t domain.Transaction) error {
	_, err := r.collection().InsertOne(ctx, mapping.ToModelTransaction(t))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, t.ID)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
	}
	return nil
}

// SaveTransactions inserts the batch with a single ordered insertMany.
func (r *TransactionRepository) SaveTransactions(ctx context.Context, txns []domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	docs := make([]interface{}, len(txns))
	for i, t := range txns {
		docs[i] = mapping.ToModelTransaction(t)
	}

	res, err := r.collection().InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return fmt.Errorf("failed to insert %d transactions: %w", len(txns), err)
	}
	if len(res.InsertedIDs) != len(txns) {
		return fmt.Errorf("inserted %d of %d transactions", len(res.InsertedIDs), len(txns))
	}
	return nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *TransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var doc models.Transaction
	err := r.collection().FindOne(ctx, bson.M{"_id": transactionID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFoundError("transaction " + transactionID + " not found")
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	t := mapping.ToDomainTransaction(doc)
	return &t, nil
}

// ListTransactions counts every match, then fetches the requested page.
func (r *TransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter, page domain.PageRequest) ([]domain.Transaction, int64, error) {
	if !page.Valid() {
		return nil, 0, apperrors.NewValidationError("invalid pagination parameters")
	}
	coll := r.collection()
	query := buildFilter(filter)

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	if total == 0 {
		return []domain.Transaction{}, 0, nil
	}

	cursor, err := coll.Find(ctx, query, findOptions(page))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find transactions: %w", err)
	}
	defer cursor.Close(ctx) //nolint:errcheck

	var docs []models.Transaction
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return mapping.ToDomainTransactions(docs), total, nil
}

// UpdateTransaction replaces the stored document.
func (r *TransactionRepository) UpdateTransaction(ctx context.Context, t domain.Transaction) error {
	res, err := r.collection().ReplaceOne(ctx, bson.M{"_id": t.ID}, mapping.ToModelTransaction(t))
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", t.ID, err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteTransaction removes a transaction by ID.
func (r *TransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	res, err := r.collection().DeleteOne(ctx, bson.M{"_id": transactionID})
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
