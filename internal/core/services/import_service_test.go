package services_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"testing/iotest"
	"time"

	"github.com/SscSPs/money_records_app/internal/apperrors"
	"github.com/SscSPs/money_records_app/internal/core/domain"
	portssvc "github.com/SscSPs/money_records_app/internal/core/ports/services"
	"github.com/SscSPs/money_records_app/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const csvHeader = "Date,Description,Amount,Currency\n"

// stubProvider returns a fixed rate table after an optional delay.
type stubProvider struct {
	rates map[string]float64
	err   error
	delay time.Duration
	calls int32

	inFlight    int32
	maxInFlight int32
}

func (p *stubProvider) FetchRates(ctx context.Context) (map[string]float64, error) {
	atomic.AddInt32(&p.calls, 1)
	cur := atomic.AddInt32(&p.inFlight, 1)
	defer atomic.AddInt32(&p.inFlight, -1)
	for {
		seen := atomic.LoadInt32(&p.maxInFlight)
		if cur <= seen || atomic.CompareAndSwapInt32(&p.maxInFlight, seen, cur) {
			break
		}
	}
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	return p.rates, p.err
}

type ImportServiceTestSuite struct {
	suite.Suite
	mockRepo *MockTransactionRepository
	provider *stubProvider
	service  portssvc.ImportSvc
	now      time.Time
}

func (suite *ImportServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockTransactionRepository)
	suite.provider = &stubProvider{rates: map[string]float64{"INR": 1, "USD": 0.012, "EUR": 0.011}}
	suite.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	suite.service = services.NewImportService(
		suite.mockRepo,
		services.NewCurrencyConverter(suite.provider, "INR"),
		services.WithImportClock(func() time.Time { return suite.now }),
	)
}

func (suite *ImportServiceTestSuite) TestImport_SkipsInvalidRowAndInsertsRest() {
	ctx := context.Background()
	src := strings.NewReader(csvHeader +
		"15-01-2024,Groceries,120,USD\n" +
		"2024-01-16,Bad date,50,USD\n" +
		"17-01-2024,Salary,1000,INR\n")

	var saved []domain.Transaction
	suite.mockRepo.On("SaveTransactions", ctx, mock.AnythingOfType("[]domain.Transaction")).
		Run(func(args mock.Arguments) { saved = args.Get(1).([]domain.Transaction) }).
		Return(nil).Once()

	result, err := suite.service.ImportTransactions(ctx, src)

	suite.Require().NoError(err)
	suite.Equal(2, result.Inserted)
	suite.Require().Len(result.Rejected, 1)
	suite.Equal(2, result.Rejected[0].Row)
	suite.Equal(domain.RejectInvalidDate, result.Rejected[0].Reason)
	suite.Empty(result.Degraded)

	suite.Require().Len(saved, 2)
	suite.Equal("Groceries", saved[0].Description)
	suite.Equal("10000", saved[0].ConvertedAmount.String())
	suite.Equal("Salary", saved[1].Description)
	suite.True(dec("1000").Equal(saved[1].ConvertedAmount))
	suite.NotEqual(saved[0].ID, saved[1].ID)
	suite.Equal(suite.now, saved[0].CreatedAt)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ImportServiceTestSuite) TestImport_AllRowsInvalid() {
	src := strings.NewReader(csvHeader +
		",Missing date,10,USD\n" +
		"15-01-2024,Zero,0,USD\n" +
		"15-01-2024,No currency,10,\n")

	result, err := suite.service.ImportTransactions(context.Background(), src)

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrNoValidRows)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransactions", mock.Anything, mock.Anything)
}

func (suite *ImportServiceTestSuite) TestImport_HeaderOnly() {
	result, err := suite.service.ImportTransactions(context.Background(), strings.NewReader(csvHeader))

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrNoValidRows)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransactions", mock.Anything, mock.Anything)
}

func (suite *ImportServiceTestSuite) TestImport_ProviderDownStoresIdentity() {
	ctx := context.Background()
	suite.provider.rates = nil
	suite.provider.err = errors.New("connection refused")
	src := strings.NewReader(csvHeader +
		"15-01-2024,Coffee,4.50,USD\n" +
		"16-01-2024,Books,30,EUR\n")

	var saved []domain.Transaction
	suite.mockRepo.On("SaveTransactions", ctx, mock.AnythingOfType("[]domain.Transaction")).
		Run(func(args mock.Arguments) { saved = args.Get(1).([]domain.Transaction) }).
		Return(nil).Once()

	result, err := suite.service.ImportTransactions(ctx, src)

	suite.Require().NoError(err)
	suite.Equal(2, result.Inserted)
	suite.Equal([]int{1, 2}, result.Degraded)
	suite.Require().Len(saved, 2)
	for _, tx := range saved {
		suite.True(tx.Amount.Equal(tx.ConvertedAmount), "converted amount should equal amount")
	}
}

func (suite *ImportServiceTestSuite) TestImport_PersistenceFailure() {
	ctx := context.Background()
	src := strings.NewReader(csvHeader + "15-01-2024,Rent,500,INR\n")
	storeErr := errors.New("store unavailable")
	suite.mockRepo.On("SaveTransactions", ctx, mock.Anything).Return(storeErr).Once()

	result, err := suite.service.ImportTransactions(ctx, src)

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrPersistenceFailure)
	suite.ErrorIs(err, storeErr)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ImportServiceTestSuite) TestImport_SchemaViolationFailsBatch() {
	src := strings.NewReader(csvHeader +
		"15-01-2024,Rent,500,INR\n" +
		"16-01-2024,,20,INR\n")

	result, err := suite.service.ImportTransactions(context.Background(), src)

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrPersistenceFailure)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransactions", mock.Anything, mock.Anything)
}

func (suite *ImportServiceTestSuite) TestImport_MalformedStream() {
	src := io.MultiReader(
		strings.NewReader(csvHeader+"15-01-2024,Rent,500,INR\n"),
		iotest.ErrReader(errors.New("connection reset")),
	)

	result, err := suite.service.ImportTransactions(context.Background(), src)

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrStreamFailure)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransactions", mock.Anything, mock.Anything)
}

func (suite *ImportServiceTestSuite) TestImport_StrayQuoteInFieldIsKept() {
	ctx := context.Background()
	src := strings.NewReader(csvHeader +
		"15-01-2024,Rent,500,INR\n" +
		"16-01-2024,27\" monitor,300,INR\n" +
		"17-01-2024,Cable,20,INR\n")

	var saved []domain.Transaction
	suite.mockRepo.On("SaveTransactions", ctx, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).([]domain.Transaction) }).
		Return(nil).Once()

	result, err := suite.service.ImportTransactions(ctx, src)

	suite.Require().NoError(err)
	suite.Equal(3, result.Inserted)
	suite.Empty(result.Rejected)
	suite.Require().Len(saved, 3)
	suite.Equal(`27" monitor`, saved[1].Description)
}

func (suite *ImportServiceTestSuite) TestImport_MaxConcurrentRowsBoundsInFlight() {
	ctx := context.Background()
	suite.provider.delay = 2 * time.Millisecond
	svc := services.NewImportService(
		suite.mockRepo,
		services.NewCurrencyConverter(suite.provider, "INR"),
		services.WithMaxConcurrentRows(4),
	)

	var b strings.Builder
	b.WriteString(csvHeader)
	const n = 40
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "01-02-2024,row-%03d,%d,USD\n", i, i)
	}

	var saved []domain.Transaction
	suite.mockRepo.On("SaveTransactions", ctx, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).([]domain.Transaction) }).
		Return(nil).Once()

	result, err := svc.ImportTransactions(ctx, strings.NewReader(b.String()))

	suite.Require().NoError(err)
	suite.Equal(n, result.Inserted)
	suite.LessOrEqual(atomic.LoadInt32(&suite.provider.maxInFlight), int32(4))
	suite.Require().Len(saved, n)
	for i, tx := range saved {
		suite.Equal(fmt.Sprintf("row-%03d", i+1), tx.Description)
	}
}

func (suite *ImportServiceTestSuite) TestImport_NoSource() {
	result, err := suite.service.ImportTransactions(context.Background(), nil)

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrNoFileProvided)
}

func (suite *ImportServiceTestSuite) TestImport_BOMAndShortRows() {
	ctx := context.Background()
	src := strings.NewReader("\ufeff Date , Description,Amount,Currency\n" +
		"15-01-2024,Rent,100\n" +
		"16-01-2024,Power,80,INR,extra\n")

	var saved []domain.Transaction
	suite.mockRepo.On("SaveTransactions", ctx, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).([]domain.Transaction) }).
		Return(nil).Once()

	result, err := suite.service.ImportTransactions(ctx, src)

	suite.Require().NoError(err)
	suite.Equal(1, result.Inserted)
	suite.Require().Len(result.Rejected, 1)
	suite.Equal(domain.RejectMissingCurrency, result.Rejected[0].Reason)
	suite.Require().Len(saved, 1)
	suite.Equal("Power", saved[0].Description)
}

func (suite *ImportServiceTestSuite) TestImport_ManyRowsKeepSourceOrder() {
	ctx := context.Background()
	suite.provider.delay = time.Millisecond

	var b strings.Builder
	b.WriteString(csvHeader)
	const n = 200
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "01-02-2024,row-%03d,%d,USD\n", i, i)
	}

	var saved []domain.Transaction
	suite.mockRepo.On("SaveTransactions", ctx, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).([]domain.Transaction) }).
		Return(nil).Once()

	result, err := suite.service.ImportTransactions(ctx, strings.NewReader(b.String()))

	suite.Require().NoError(err)
	suite.Equal(n, result.Inserted)
	suite.Require().Len(saved, n)
	for i, tx := range saved {
		suite.Equal(fmt.Sprintf("row-%03d", i+1), tx.Description)
	}
	suite.Equal(int32(n), atomic.LoadInt32(&suite.provider.calls), "one provider call per row")
}

func TestImportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ImportServiceTestSuite))
}
