package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/money_records_app/internal/apperrors"
	portssvc "github.com/SscSPs/money_records_app/internal/core/ports/services"
	"github.com/SscSPs/money_records_app/internal/dto"
	"github.com/SscSPs/money_records_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// uploadFormField is the multipart field carrying the CSV file.
const uploadFormField = "file"

// transactionHandler handles HTTP requests related to transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
	importService      portssvc.ImportSvc
	maxUploadBytes     int64
}

// newTransactionHandler creates a new transactionHandler.
func newTransactionHandler(ts portssvc.TransactionSvcFacade, is portssvc.ImportSvc, maxUploadBytes int64) *transactionHandler {
	return &transactionHandler{
		transactionService: ts,
		importService:      is,
		maxUploadBytes:     maxUploadBytes,
	}
}

// registerTransactionRoutes registers routes related to transactions. uploadMW runs in
// front of the upload endpoint only.
func registerTransactionRoutes(rg *gin.RouterGroup, ts portssvc.TransactionSvcFacade, is portssvc.ImportSvc, maxUploadBytes int64, uploadMW ...gin.HandlerFunc) {
	h := newTransactionHandler(ts, is, maxUploadBytes)

	txns := rg.Group("/transactions")
	{
		txns.POST("/upload", append(uploadMW, h.uploadTransactions)...)
		txns.GET("", h.listTransactions)
		txns.POST("", h.createTransaction)
		txns.GET("/:id", h.getTransaction)
		txns.PUT("/:id", h.updateTransaction)
		txns.DELETE("/:id", h.deleteTransaction)
	}
}

// uploadTransactions godoc
// @Summary Upload a CSV of transactions
// @Description Parses a CSV with columns Date (DD-MM-YYYY), Description, Amount, Currency. Invalid rows are skipped and reported; valid rows are converted to the base currency and saved in one batch.
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 201 {object} dto.UploadResponse
// @Failure 400 {object} map[string]string "No file uploaded or no valid rows"
// @Failure 413 {object} map[string]string "File too large"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 500 {object} map[string]string "Error processing file or saving transactions"
// @Router /transactions/upload [post]
func (h *transactionHandler) uploadTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fileHeader, err := c.FormFile(uploadFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("Upload exceeds size limit", slog.Int64("limit_bytes", tooLarge.Limit))
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "File too large"})
			return
		}
		logger.Warn("No file in upload request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error processing file", "error": err.Error()})
		return
	}
	defer file.Close()

	logger = logger.With(slog.String("file_name", fileHeader.Filename), slog.Int64("file_size", fileHeader.Size))
	logger.Info("Received transaction upload")

	result, err := h.importService.ImportTransactions(c.Request.Context(), file)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNoFileProvided):
			c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		case errors.Is(err, apperrors.ErrNoValidRows):
			logger.Warn("Upload contained no valid rows")
			c.JSON(http.StatusBadRequest, gin.H{"message": "No valid transactions to save"})
		case errors.Is(err, apperrors.ErrPersistenceFailure):
			logger.Error("Failed to save uploaded transactions", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error saving transactions", "error": err.Error()})
		default:
			logger.Error("Failed to process uploaded file", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error processing file", "error": err.Error()})
		}
		return
	}

	logger.Info("Upload processed",
		slog.Int("inserted", result.Inserted),
		slog.Int("rejected", len(result.Rejected)),
		slog.Int("degraded", len(result.Degraded)))
	c.JSON(http.StatusCreated, dto.ToUploadResponse("File processed and transactions saved", result))
}

// listTransactions godoc
// @Summary List transactions
// @Description Returns one page of transactions ordered by date (newest first) plus the total match count
// @Tags transactions
// @Produce json
// @Param startDate query string false "Inclusive lower date bound (YYYY-MM-DD, RFC 3339 or DD-MM-YYYY)"
// @Param endDate query string false "Inclusive upper date bound"
// @Param minAmount query number false "Inclusive minimum amount"
// @Param maxAmount query number false "Inclusive maximum amount"
// @Param description query string false "Case-insensitive substring of the description"
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.transactionService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid list parameters", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list transactions", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// createTransaction godoc
// @Summary Create a transaction
// @Description Creates a single transaction and converts its amount to the base currency
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 500 {object} map[string]string "Failed to create transaction"
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		logger.Error("Failed to create transaction", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create transaction", "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// getTransaction godoc
// @Summary Get a transaction by ID
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid transaction ID"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), transactionID)
	if err != nil {
		h.writeLookupError(c, logger, err, "Failed to retrieve transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// updateTransaction godoc
// @Summary Update a transaction
// @Description Applies a partial update. The converted amount is always recomputed.
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param transaction body dto.UpdateTransactionRequest true "Fields to update"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid ID or input"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to update transaction"
// @Router /transactions/{id} [put]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")
	logger = logger.With(slog.String("transaction_id", transactionID))

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), transactionID, req)
	if err != nil {
		h.writeLookupError(c, logger, err, "Failed to update transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// deleteTransaction godoc
// @Summary Delete a transaction
// @Tags transactions
// @Param id path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid transaction ID"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to delete transaction"
// @Router /transactions/{id} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), transactionID); err != nil {
		h.writeLookupError(c, logger, err, "Failed to delete transaction")
		return
	}

	c.Status(http.StatusNoContent)
}

// writeLookupError maps errors from id-addressed operations to a response.
func (h *transactionHandler) writeLookupError(c *gin.Context, logger *slog.Logger, err error, failMsg string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Invalid transaction request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Transaction not found")
		c.JSON(http.StatusNotFound, gin.H{"message": "Transaction not found"})
	default:
		logger.Error(failMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": failMsg, "error": err.Error()})
	}
}
