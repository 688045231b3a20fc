package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/money_records_app/internal/apperrors"
	"github.com/SscSPs/money_records_app/internal/core/domain"
	portsrepo "github.com/SscSPs/money_records_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_records_app/internal/core/ports/services"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const utf8BOM = "\ufeff"

type importService struct {
	BaseService
	repo      portsrepo.TransactionWriter
	converter portssvc.CurrencyConverterSvc
	maxTasks  int
	now       func() time.Time
}

// ImportOption is a functional option for configuring the import service
type ImportOption func(*importService)

// WithMaxConcurrentRows bounds the number of row tasks in flight. n <= 0 means no bound.
// When the bound is reached the reader waits for a free slot.
func WithMaxConcurrentRows(n int) ImportOption {
	return func(s *importService) {
		s.maxTasks = n
	}
}

// WithImportClock overrides the clock used for audit timestamps.
func WithImportClock(now func() time.Time) ImportOption {
	return func(s *importService) {
		s.now = now
	}
}

// NewImportService creates the CSV ingestion pipeline.
func NewImportService(repo portsrepo.TransactionWriter, converter portssvc.CurrencyConverterSvc, options ...ImportOption) portssvc.ImportSvc {
	svc := &importService{
		repo:      repo,
		converter: converter,
		now:       time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ImportSvc = (*importService)(nil)

// accepted is one row that made it through validation and conversion.
type accepted struct {
	row      int
	tx       domain.Transaction
	degraded bool
}

// accumulator collects row task outcomes. Appends are serialized by mu.
type accumulator struct {
	mu       sync.Mutex
	accepted []accepted
	rejected []domain.RowRejection
}

func (a *accumulator) accept(r accepted) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accepted = append(a.accepted, r)
}

func (a *accumulator) reject(r domain.RowRejection) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rejected = append(a.rejected, r)
}

// ImportTransactions reads src as CSV with a header row, processes every data row in its
// own task and writes the accepted rows with a single batch insert once all tasks settle.
func (s *importService) ImportTransactions(ctx context.Context, src io.Reader) (*domain.ImportResult, error) {
	if src == nil {
		return nil, apperrors.ErrNoFileProvided
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(taskCtx)
	if s.maxTasks > 0 {
		g.SetLimit(s.maxTasks)
	}
	acc := &accumulator{}

	rows, err := s.stream(gctx, src, func(rowNum int, raw domain.RawRow) {
		g.Go(func() error {
			s.processRow(gctx, rowNum, raw, acc)
			return nil
		})
	})
	if err != nil {
		// In-flight tasks see the cancelled context and their results are dropped with acc.
		cancel()
		s.LogError(ctx, err, "CSV stream failed", slog.Int("rows_read", rows))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStreamFailure, err)
	}

	_ = g.Wait()

	if len(acc.accepted) == 0 {
		s.LogWarn(ctx, "Import produced no valid rows",
			slog.Int("rows_read", rows),
			slog.Int("rejected", len(acc.rejected)))
		return nil, apperrors.ErrNoValidRows
	}

	sort.Slice(acc.accepted, func(i, j int) bool { return acc.accepted[i].row < acc.accepted[j].row })
	sort.Slice(acc.rejected, func(i, j int) bool { return acc.rejected[i].Row < acc.rejected[j].Row })

	result := &domain.ImportResult{Rejected: acc.rejected}
	batch := make([]domain.Transaction, 0, len(acc.accepted))
	for _, a := range acc.accepted {
		if err := a.tx.Validate(); err != nil {
			s.LogError(ctx, err, "Accepted row failed store schema check", slog.Int("row", a.row))
			return nil, fmt.Errorf("%w: row %d: %v", apperrors.ErrPersistenceFailure, a.row, err)
		}
		batch = append(batch, a.tx)
		if a.degraded {
			result.Degraded = append(result.Degraded, a.row)
		}
	}

	if err := s.repo.SaveTransactions(ctx, batch); err != nil {
		s.LogError(ctx, err, "Batch insert failed", slog.Int("count", len(batch)))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrPersistenceFailure, err)
	}

	result.Inserted = len(batch)
	s.LogInfo(ctx, "Import completed",
		slog.Int("rows_read", rows),
		slog.Int("inserted", result.Inserted),
		slog.Int("rejected", len(result.Rejected)),
		slog.Int("degraded", len(result.Degraded)))
	return result, nil
}

// stream parses src record by record and hands every data row to spawn as soon as it is
// read. It returns the number of data rows read.
func (s *importService) stream(ctx context.Context, src io.Reader, spawn func(int, domain.RawRow)) (int, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rowNum := 0
	for {
		if err := ctx.Err(); err != nil {
			return rowNum, err
		}
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return rowNum, nil
			}
			return rowNum, fmt.Errorf("failed to read CSV record: %w", err)
		}
		rowNum++

		raw := make(domain.RawRow, len(header))
		for i, col := range header {
			if i < len(record) {
				raw[col] = record[i]
			} else {
				raw[col] = ""
			}
		}
		spawn(rowNum, raw)
	}
}

// processRow validates then converts one row. Failures are recorded, never returned.
func (s *importService) processRow(ctx context.Context, rowNum int, raw domain.RawRow, acc *accumulator) {
	valid, rejection := ValidateRow(raw)
	if rejection != nil {
		rejection.Row = rowNum
		s.LogDebug(ctx, "Row rejected",
			slog.Int("row", rowNum),
			slog.String("reason", string(rejection.Reason)))
		acc.reject(*rejection)
		return
	}

	conversion := s.converter.ConvertToBase(ctx, valid.Amount, valid.Currency)
	if ctx.Err() != nil {
		return
	}

	now := s.now()
	acc.accept(accepted{
		row:      rowNum,
		degraded: conversion.Degraded,
		tx: domain.Transaction{
			ID:              uuid.NewString(),
			Date:            valid.Date,
			Description:     valid.Description,
			Amount:          valid.Amount,
			Currency:        valid.Currency,
			ConvertedAmount: conversion.Amount,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				LastUpdatedAt: now,
			},
		},
	})
}
