package services

import (
	portsrepo "github.com/SscSPs/money_records_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_records_app/internal/core/ports/services"
	"github.com/SscSPs/money_records_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The converter is shared by CRUD and import so both convert the same way.
	container.Converter = NewCurrencyConverter(repos.RateProvider, cfg.BaseCurrency)
	container.Transaction = NewTransactionService(repos.TransactionRepo, container.Converter)
	container.Import = NewImportService(repos.TransactionRepo, container.Converter,
		WithMaxConcurrentRows(cfg.ImportMaxConcurrentRows))

	return container
}
