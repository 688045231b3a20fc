package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/money_records_app/internal/apperrors"
	"github.com/SscSPs/money_records_app/internal/core/domain"
	portsrepo "github.com/SscSPs/money_records_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_records_app/internal/core/ports/services"
	"github.com/SscSPs/money_records_app/internal/dto"
	"github.com/SscSPs/money_records_app/internal/utils/validation"
	"github.com/google/uuid"
)

// Layouts accepted for startDate/endDate query parameters, tried in order.
var queryDateLayouts = []string{"2006-01-02", time.RFC3339, domain.DateLayout}

// transactionService implements the TransactionSvcFacade interface
type transactionService struct {
	BaseService
	repo      portsrepo.TransactionRepositoryFacade
	converter portssvc.CurrencyConverterSvc
	now       func() time.Time
}

// ServiceOption is a functional option for configuring the transaction service
type ServiceOption func(*transactionService)

// WithClock overrides the clock used for audit timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *transactionService) {
		s.now = now
	}
}

// NewTransactionService creates a new transaction service with the provided options
func NewTransactionService(repo portsrepo.TransactionRepositoryFacade, converter portssvc.CurrencyConverterSvc, options ...ServiceOption) portssvc.TransactionSvcFacade {
	svc := &transactionService{
		repo:      repo,
		converter: converter,
		now:       time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	date, err := domain.ParseTransactionDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be in DD-MM-YYYY format", apperrors.ErrValidation)
	}
	if !validation.IsStorableAmount(req.Amount) {
		return nil, fmt.Errorf("%w: amount must be a positive number within range", apperrors.ErrValidation)
	}
	currency := domain.NormalizeCurrency(req.Currency)
	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", apperrors.ErrValidation)
	}

	conversion := s.converter.ConvertToBase(ctx, req.Amount, currency)
	now := s.now()
	tx := domain.Transaction{
		ID:              uuid.NewString(),
		Date:            date,
		Description:     req.Description,
		Amount:          req.Amount,
		Currency:        currency,
		ConvertedAmount: conversion.Amount,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.repo.SaveTransaction(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to save transaction", slog.String("transaction_id", tx.ID))
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.LogInfo(ctx, "Transaction created",
		slog.String("transaction_id", tx.ID),
		slog.Bool("conversion_degraded", conversion.Degraded))
	return &tx, nil
}

func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	if err := validateTransactionID(transactionID); err != nil {
		return nil, err
	}

	tx, err := s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	return tx, nil
}

// UpdateTransaction applies the non-nil fields of req. The converted amount is always
// recomputed from the resulting amount and currency.
func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	if err := validateTransactionID(transactionID); err != nil {
		return nil, err
	}

	tx, err := s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load transaction for update", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	if req.Date != nil {
		date, err := domain.ParseTransactionDate(*req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be in DD-MM-YYYY format", apperrors.ErrValidation)
		}
		tx.Date = date
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return nil, fmt.Errorf("%w: description cannot be empty", apperrors.ErrValidation)
		}
		tx.Description = *req.Description
	}
	if req.Amount != nil {
		if !validation.IsStorableAmount(*req.Amount) {
			return nil, fmt.Errorf("%w: amount must be a positive number within range", apperrors.ErrValidation)
		}
		tx.Amount = *req.Amount
	}
	if req.Currency != nil {
		currency := domain.NormalizeCurrency(*req.Currency)
		if currency == "" {
			return nil, fmt.Errorf("%w: currency cannot be empty", apperrors.ErrValidation)
		}
		tx.Currency = currency
	}

	conversion := s.converter.ConvertToBase(ctx, tx.Amount, tx.Currency)
	tx.ConvertedAmount = conversion.Amount
	tx.LastUpdatedAt = s.now()

	if err := s.repo.UpdateTransaction(ctx, *tx); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Transaction updated",
		slog.String("transaction_id", transactionID),
		slog.Bool("conversion_degraded", conversion.Degraded))
	return tx, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID string) error {
	if err := validateTransactionID(transactionID); err != nil {
		return err
	}

	if err := s.repo.DeleteTransaction(ctx, transactionID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		}
		return err
	}

	s.LogInfo(ctx, "Transaction deleted", slog.String("transaction_id", transactionID))
	return nil
}

// ListTransactions parses the raw query, then returns one page plus the total match count.
func (s *transactionService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	filter, page, err := buildListQuery(params)
	if err != nil {
		return nil, err
	}

	txns, total, err := s.repo.ListTransactions(ctx, filter, page)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions",
			slog.Int("page", page.Page),
			slog.Int("limit", page.Size))
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	s.LogDebug(ctx, "Transactions listed", slog.Int("count", len(txns)), slog.Int64("total", total))
	return &dto.ListTransactionsResponse{
		Total:        total,
		Transactions: dto.ToTransactionResponses(txns),
	}, nil
}

func validateTransactionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewValidationError("invalid transaction ID")
	}
	return nil
}

func buildListQuery(params dto.ListTransactionsParams) (domain.TransactionFilter, domain.PageRequest, error) {
	var filter domain.TransactionFilter

	page, err := parsePositiveInt(params.Page, dto.DefaultPage)
	if err != nil {
		return filter, domain.PageRequest{}, fmt.Errorf("%w: invalid pagination parameters", apperrors.ErrValidation)
	}
	limit, err := parsePositiveInt(params.Limit, dto.DefaultLimit)
	if err != nil {
		return filter, domain.PageRequest{}, fmt.Errorf("%w: invalid pagination parameters", apperrors.ErrValidation)
	}
	pageReq := domain.PageRequest{Page: page, Size: limit}
	if !pageReq.Valid() {
		return filter, domain.PageRequest{}, fmt.Errorf("%w: invalid pagination parameters", apperrors.ErrValidation)
	}

	if params.StartDate != "" {
		d, err := parseQueryDate(params.StartDate)
		if err != nil {
			return filter, pageReq, fmt.Errorf("%w: invalid startDate", apperrors.ErrValidation)
		}
		filter.DateFrom = &d
	}
	if params.EndDate != "" {
		d, err := parseQueryDate(params.EndDate)
		if err != nil {
			return filter, pageReq, fmt.Errorf("%w: invalid endDate", apperrors.ErrValidation)
		}
		filter.DateTo = &d
	}
	if params.MinAmount != "" {
		a, err := validation.ParseAmount(params.MinAmount)
		if err != nil {
			return filter, pageReq, fmt.Errorf("%w: invalid minAmount", apperrors.ErrValidation)
		}
		filter.AmountMin = &a
	}
	if params.MaxAmount != "" {
		a, err := validation.ParseAmount(params.MaxAmount)
		if err != nil {
			return filter, pageReq, fmt.Errorf("%w: invalid maxAmount", apperrors.ErrValidation)
		}
		filter.AmountMax = &a
	}
	filter.DescriptionContains = strings.TrimSpace(params.Description)

	return filter, pageReq, nil
}

func parsePositiveInt(value string, def int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("value %d is less than 1", n)
	}
	return n, nil
}

func parseQueryDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range queryDateLayouts {
		t, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
