package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/money_records_app/internal/apperrors"
	"github.com/SscSPs/money_records_app/internal/core/domain"
	portssvc "github.com/SscSPs/money_records_app/internal/core/ports/services"
	"github.com/SscSPs/money_records_app/internal/core/services"
	"github.com/SscSPs/money_records_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	mockRepo      *MockTransactionRepository
	mockConverter *MockConverter
	service       portssvc.TransactionSvcFacade
	now           time.Time
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockTransactionRepository)
	suite.mockConverter = new(MockConverter)
	suite.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	suite.service = services.NewTransactionService(suite.mockRepo, suite.mockConverter,
		services.WithClock(func() time.Time { return suite.now }))
}

func (suite *TransactionServiceTestSuite) existing() *domain.Transaction {
	return &domain.Transaction{
		ID:              uuid.NewString(),
		Date:            time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description:     "Groceries",
		Amount:          dec("120"),
		Currency:        "USD",
		ConvertedAmount: dec("10000"),
		AuditFields: domain.AuditFields{
			CreatedAt:     suite.now.Add(-time.Hour),
			LastUpdatedAt: suite.now.Add(-time.Hour),
		},
	}
}

// --- Create ---

func (suite *TransactionServiceTestSuite) TestCreateTransaction_Success() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{Date: "15-01-2024", Description: "Groceries", Amount: dec("120"), Currency: "usd"}

	suite.mockConverter.On("ConvertToBase", ctx, req.Amount, "USD").
		Return(domain.Conversion{Amount: dec("10000"), Rate: dec("0.012")}).Once()
	suite.mockRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(tx domain.Transaction) bool {
		return tx.Currency == "USD" && tx.ConvertedAmount.Equal(dec("10000")) && tx.ID != ""
	})).Return(nil).Once()

	tx, err := suite.service.CreateTransaction(ctx, req)

	suite.Require().NoError(err)
	suite.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), tx.Date)
	suite.Equal(suite.now, tx.CreatedAt)
	_, parseErr := uuid.Parse(tx.ID)
	suite.NoError(parseErr)
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockConverter.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_ValidationErrors() {
	tests := []struct {
		name string
		req  dto.CreateTransactionRequest
	}{
		{"bad date", dto.CreateTransactionRequest{Date: "2024-01-15", Description: "x", Amount: dec("1"), Currency: "USD"}},
		{"zero amount", dto.CreateTransactionRequest{Date: "15-01-2024", Description: "x", Amount: decimal.Zero, Currency: "USD"}},
		{"amount overflows float64", dto.CreateTransactionRequest{Date: "15-01-2024", Description: "x", Amount: dec("1e400"), Currency: "USD"}},
		{"amount underflows float64", dto.CreateTransactionRequest{Date: "15-01-2024", Description: "x", Amount: dec("1e-400"), Currency: "USD"}},
		{"blank currency", dto.CreateTransactionRequest{Date: "15-01-2024", Description: "x", Amount: dec("1"), Currency: "  "}},
		{"blank description", dto.CreateTransactionRequest{Date: "15-01-2024", Description: "", Amount: dec("1"), Currency: "USD"}},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			tx, err := suite.service.CreateTransaction(context.Background(), tt.req)
			suite.Nil(tx)
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_SaveError() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{Date: "15-01-2024", Description: "x", Amount: dec("5"), Currency: "INR"}
	suite.mockConverter.On("ConvertToBase", ctx, req.Amount, "INR").Return(domain.Conversion{Amount: dec("5")}).Once()
	suite.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(assert.AnError).Once()

	tx, err := suite.service.CreateTransaction(ctx, req)

	suite.Nil(tx)
	suite.ErrorIs(err, assert.AnError)
}

// --- Get ---

func (suite *TransactionServiceTestSuite) TestGetTransactionByID() {
	ctx := context.Background()
	existing := suite.existing()
	suite.mockRepo.On("FindTransactionByID", ctx, existing.ID).Return(existing, nil).Once()

	tx, err := suite.service.GetTransactionByID(ctx, existing.ID)

	suite.Require().NoError(err)
	suite.Equal(existing, tx)
}

func (suite *TransactionServiceTestSuite) TestGetTransactionByID_MalformedID() {
	tx, err := suite.service.GetTransactionByID(context.Background(), "not-a-uuid")

	suite.Nil(tx)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindTransactionByID", mock.Anything, mock.Anything)
}

// --- Update ---

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_RecomputesConvertedAmount() {
	ctx := context.Background()
	existing := suite.existing()
	newAmount := dec("240")
	newDesc := "Weekly groceries"
	req := dto.UpdateTransactionRequest{Amount: &newAmount, Description: &newDesc}

	suite.mockRepo.On("FindTransactionByID", ctx, existing.ID).Return(existing, nil).Once()
	suite.mockConverter.On("ConvertToBase", ctx, newAmount, "USD").
		Return(domain.Conversion{Amount: dec("20000"), Rate: dec("0.012")}).Once()
	suite.mockRepo.On("UpdateTransaction", ctx, mock.MatchedBy(func(tx domain.Transaction) bool {
		return tx.ID == existing.ID && tx.ConvertedAmount.Equal(dec("20000")) && tx.Description == newDesc
	})).Return(nil).Once()

	tx, err := suite.service.UpdateTransaction(ctx, existing.ID, req)

	suite.Require().NoError(err)
	suite.True(dec("20000").Equal(tx.ConvertedAmount))
	suite.Equal(suite.now, tx.LastUpdatedAt)
	suite.Equal("USD", tx.Currency)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_CurrencyChange() {
	ctx := context.Background()
	existing := suite.existing()
	cur := " eur "
	suite.mockRepo.On("FindTransactionByID", ctx, existing.ID).Return(existing, nil).Once()
	suite.mockConverter.On("ConvertToBase", ctx, existing.Amount, "EUR").
		Return(domain.Conversion{Amount: existing.Amount, Degraded: true}).Once()
	suite.mockRepo.On("UpdateTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	tx, err := suite.service.UpdateTransaction(ctx, existing.ID, dto.UpdateTransactionRequest{Currency: &cur})

	suite.Require().NoError(err)
	suite.Equal("EUR", tx.Currency)
	suite.True(tx.Amount.Equal(tx.ConvertedAmount))
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_NotFound() {
	ctx := context.Background()
	id := uuid.NewString()
	suite.mockRepo.On("FindTransactionByID", ctx, id).Return(nil, apperrors.ErrNotFound).Once()

	tx, err := suite.service.UpdateTransaction(ctx, id, dto.UpdateTransactionRequest{})

	suite.Nil(tx)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_MalformedID() {
	tx, err := suite.service.UpdateTransaction(context.Background(), "123", dto.UpdateTransactionRequest{})

	suite.Nil(tx)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindTransactionByID", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_InvalidField() {
	ctx := context.Background()
	existing := suite.existing()
	bad := dec("-3")
	suite.mockRepo.On("FindTransactionByID", ctx, existing.ID).Return(existing, nil).Once()

	tx, err := suite.service.UpdateTransaction(ctx, existing.ID, dto.UpdateTransactionRequest{Amount: &bad})

	suite.Nil(tx)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_UnstorableAmount() {
	for _, raw := range []string{"1e400", "1e-400"} {
		suite.Run(raw, func() {
			ctx := context.Background()
			existing := suite.existing()
			bad := dec(raw)
			suite.mockRepo.On("FindTransactionByID", ctx, existing.ID).Return(existing, nil).Once()

			tx, err := suite.service.UpdateTransaction(ctx, existing.ID, dto.UpdateTransactionRequest{Amount: &bad})

			suite.Nil(tx)
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateTransaction", mock.Anything, mock.Anything)
}

// --- Delete ---

func (suite *TransactionServiceTestSuite) TestDeleteTransaction() {
	ctx := context.Background()
	id := uuid.NewString()
	suite.mockRepo.On("DeleteTransaction", ctx, id).Return(nil).Once()

	suite.NoError(suite.service.DeleteTransaction(ctx, id))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_NotFound() {
	ctx := context.Background()
	id := uuid.NewString()
	suite.mockRepo.On("DeleteTransaction", ctx, id).Return(apperrors.ErrNotFound).Once()

	suite.ErrorIs(suite.service.DeleteTransaction(ctx, id), apperrors.ErrNotFound)
}

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_MalformedID() {
	err := suite.service.DeleteTransaction(context.Background(), "xyz")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeleteTransaction", mock.Anything, mock.Anything)
}

// --- List ---

func (suite *TransactionServiceTestSuite) TestListTransactions_Defaults() {
	ctx := context.Background()
	items := []domain.Transaction{*suite.existing()}
	suite.mockRepo.On("ListTransactions", ctx, domain.TransactionFilter{}, domain.PageRequest{Page: 1, Size: 10}).
		Return(items, int64(25), nil).Once()

	resp, err := suite.service.ListTransactions(ctx, dto.ListTransactionsParams{})

	suite.Require().NoError(err)
	suite.Equal(int64(25), resp.Total)
	suite.Len(resp.Transactions, 1)
	suite.Equal(items[0].ID, resp.Transactions[0].ID)
}

func (suite *TransactionServiceTestSuite) TestListTransactions_Filters() {
	ctx := context.Background()
	params := dto.ListTransactionsParams{
		StartDate:   "2024-01-01",
		EndDate:     "31-01-2024",
		MinAmount:   "100",
		MaxAmount:   "200",
		Description: " rent ",
		Page:        "3",
		Limit:       "10",
	}
	suite.mockRepo.On("ListTransactions", ctx, mock.MatchedBy(func(f domain.TransactionFilter) bool {
		return f.DateFrom.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) &&
			f.DateTo.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) &&
			f.AmountMin.Equal(dec("100")) &&
			f.AmountMax.Equal(dec("200")) &&
			f.DescriptionContains == "rent"
	}), domain.PageRequest{Page: 3, Size: 10}).Return([]domain.Transaction{}, int64(0), nil).Once()

	resp, err := suite.service.ListTransactions(ctx, params)

	suite.Require().NoError(err)
	suite.Empty(resp.Transactions)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestListTransactions_InvalidParams() {
	tests := []struct {
		name   string
		params dto.ListTransactionsParams
	}{
		{"page zero", dto.ListTransactionsParams{Page: "0"}},
		{"negative limit", dto.ListTransactionsParams{Limit: "-5"}},
		{"non-numeric page", dto.ListTransactionsParams{Page: "two"}},
		{"bad start date", dto.ListTransactionsParams{StartDate: "yesterday"}},
		{"bad min amount", dto.ListTransactionsParams{MinAmount: "lots"}},
		{"page offset overflows", dto.ListTransactionsParams{Page: "9223372036854775807", Limit: "10"}},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			resp, err := suite.service.ListTransactions(context.Background(), tt.params)
			suite.Nil(resp)
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
	suite.mockRepo.AssertNotCalled(suite.T(), "ListTransactions", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestListTransactions_RepoError() {
	ctx := context.Background()
	suite.mockRepo.On("ListTransactions", ctx, mock.Anything, mock.Anything).Return(nil, int64(0), assert.AnError).Once()

	resp, err := suite.service.ListTransactions(ctx, dto.ListTransactionsParams{})

	suite.Nil(resp)
	suite.ErrorIs(err, assert.AnError)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
