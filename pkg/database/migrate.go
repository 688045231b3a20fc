package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	migrate "github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemongo "github.com/golang-migrate/migrate/v4/database/mongodb"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.mongodb.org/mongo-driver/mongo"
)

// Migration sub-directories per backend, relative to the migrations root.
const (
	MongoMigrationsDir    = "mongodb"
	PostgresMigrationsDir = "postgres"
)

// RunMongoMigrations applies every pending up migration under <root>/mongodb to dbName.
func RunMongoMigrations(client *mongo.Client, dbName, root string) error {
	driver, err := migratemongo.WithInstance(client, &migratemongo.Config{DatabaseName: dbName})
	if err != nil {
		return fmt.Errorf("could not create mongodb driver instance for migrations: %w", err)
	}
	return applyMigrations(filepath.Join(root, MongoMigrationsDir), "mongodb", driver)
}

// RunPostgresMigrations applies every pending up migration under <root>/postgres. It opens
// a short-lived database/sql connection through the pgx stdlib driver.
func RunPostgresMigrations(databaseURL, root string) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			slog.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}
	return applyMigrations(filepath.Join(root, PostgresMigrationsDir), "postgres", driver)
}

func applyMigrations(dir, dbName string, driver migratedb.Driver) error {
	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(dir), dbName, driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		slog.Info("No new migrations to apply", slog.String("backend", dbName))
	} else {
		slog.Info("Database migrations applied", slog.String("backend", dbName))
	}
	return nil
}
