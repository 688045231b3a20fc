package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/money_records_app/internal/adapters/ratesapi"
	portsrepo "github.com/SscSPs/money_records_app/internal/core/ports/repositories"
	"github.com/SscSPs/money_records_app/internal/platform/config"
	"github.com/SscSPs/money_records_app/internal/repositories/database/mongodb"
	"github.com/SscSPs/money_records_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/money_records_app/pkg/database"
)

// Store is an open persistence backend plus the repositories built on it.
type Store struct {
	Kind  config.StoreKind
	Repos portsrepo.RepositoryProvider
	close func()
}

// Close releases the backend connection.
func (s *Store) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// OpenStore connects to the backend named by cfg.StoreURI, applies migrations when
// enabled and wires the repositories together with the rate provider.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	kind, err := cfg.StoreKind()
	if err != nil {
		return nil, err
	}

	rates := ratesapi.NewClient(cfg.RateProviderURL, cfg.RequestTimeout)

	switch kind {
	case config.StoreMongo:
		client, err := database.ConnectToMongoDB(ctx, cfg.StoreURI, cfg.EnableDBCheck)
		if err != nil {
			return nil, err
		}
		closeFn := func() { database.DisconnectMongoDB(context.Background(), client) }

		if cfg.RunMigrations {
			logger.Info("Running database migrations", slog.String("store", string(kind)))
			if err := database.RunMongoMigrations(client, cfg.StoreDatabase, cfg.MigrationsPath); err != nil {
				closeFn()
				return nil, err
			}
		}

		return &Store{
			Kind:  kind,
			Repos: mongodb.NewRepositoryProvider(client.Database(cfg.StoreDatabase), rates),
			close: closeFn,
		}, nil

	case config.StorePostgres:
		pool, err := database.NewPgxPool(ctx, cfg.StoreURI, cfg.EnableDBCheck)
		if err != nil {
			return nil, err
		}
		closeFn := func() { database.ClosePgxPool(pool) }

		if cfg.RunMigrations {
			logger.Info("Running database migrations", slog.String("store", string(kind)))
			if err := database.RunPostgresMigrations(cfg.StoreURI, cfg.MigrationsPath); err != nil {
				closeFn()
				return nil, err
			}
		}

		return &Store{
			Kind:  kind,
			Repos: pgsql.NewRepositoryProvider(pool, rates),
			close: closeFn,
		}, nil
	}

	return nil, fmt.Errorf("unsupported store kind %q", kind)
}
