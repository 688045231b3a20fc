package mongodb

import (
	"context"

	portsrepo "github.com/SscSPs/money_records_app/internal/core/ports/repositories"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TransactionsCollection is the collection holding transaction documents.
const TransactionsCollection = "transactions"

// ---- Abstractions for Testability ----

// DataStore is the subset of *mongo.Collection the repository uses.
type DataStore interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// CollectionProvider defines the interface for obtaining a collection.
type CollectionProvider interface {
	Collection(name string) DataStore
}

// DatabaseProvider adapts *mongo.Database to CollectionProvider.
type DatabaseProvider struct {
	db *mongo.Database
}

// NewDatabaseProvider creates a CollectionProvider over db.
func NewDatabaseProvider(db *mongo.Database) *DatabaseProvider {
	return &DatabaseProvider{db: db}
}

// Collection returns a DataStore for the given collection name.
func (p *DatabaseProvider) Collection(name string) DataStore {
	return p.db.Collection(name)
}

// NewRepositoryProvider wires the MongoDB transaction store. rates is passed through.
func NewRepositoryProvider(db *mongo.Database, rates portsrepo.RateProvider) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TransactionRepo: NewTransactionRepository(NewDatabaseProvider(db)),
		RateProvider:    rates,
	}
}
