package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trackwise/expense-voice/internal/application/service"
	"github.com/trackwise/expense-voice/internal/domain/entity"
	"github.com/trackwise/expense-voice/internal/export"
	"github.com/trackwise/expense-voice/internal/extraction"
	"github.com/trackwise/expense-voice/internal/repository"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	expenseService *service.ExpenseService
	voiceService   *service.VoiceService
	reportWriter   *export.ReportWriter
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	expenseService *service.ExpenseService,
	voiceService *service.VoiceService,
	reportWriter *export.ReportWriter,
	logger Logger,
) *Handlers {
	return &Handlers{
		expenseService: expenseService,
		voiceService:   voiceService,
		reportWriter:   reportWriter,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	// Retryable marks transient failures the client may resubmit.
	Retryable bool `json:"retryable,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          int64  `json:"id"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CategorySummaryResponse represents one category total in API responses
type CategorySummaryResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
	Count    int    `json:"count"`
}

// CreateExpenseRequest represents the create/update request body
type CreateExpenseRequest struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// UpdateExpenseRequest represents a partial update body
type UpdateExpenseRequest struct {
	Amount      *string `json:"amount"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
}

// ListExpensesRequest represents query parameters for listing expenses
type ListExpensesRequest struct {
	Category  string `form:"category"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// ProcessVoiceRequest represents the transcript submission body
type ProcessVoiceRequest struct {
	Transcript string `json:"transcript"`
	Language   string `json:"language"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// username identifies the expense namespace. Clients send it in the
// X-Username header or a username query parameter.
func username(c *gin.Context) string {
	if u := c.GetHeader("X-Username"); u != "" {
		return u
	}
	return c.Query("username")
}

// ListExpenses handles GET /api/expenses
func (h *Handlers) ListExpenses(c *gin.Context) {
	var req ListExpensesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	filter, err := h.buildFilter(c, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	expenses, err := h.expenseService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list expenses")
		return
	}

	responseExpenses := make([]ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		responseExpenses = append(responseExpenses, toExpenseResponse(expense))
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    responseExpenses,
	})
}

// CreateExpense handles POST /api/expenses
func (h *Handlers) CreateExpense(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	expense, err := h.expenseService.Create(c.Request.Context(), username(c), service.CreateExpenseInput{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		h.handleServiceError(c, err, "Failed to create expense")
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    toExpenseResponse(expense),
	})
}

// GetExpense handles GET /api/expenses/:id
func (h *Handlers) GetExpense(c *gin.Context) {
	id, ok := h.expenseID(c)
	if !ok {
		return
	}

	expense, err := h.expenseService.Get(c.Request.Context(), username(c), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get expense")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toExpenseResponse(expense),
	})
}

// UpdateExpense handles PUT /api/expenses/:id
func (h *Handlers) UpdateExpense(c *gin.Context) {
	id, ok := h.expenseID(c)
	if !ok {
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	expense, err := h.expenseService.Update(c.Request.Context(), username(c), id, service.UpdateExpenseInput{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		h.handleServiceError(c, err, "Failed to update expense")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toExpenseResponse(expense),
	})
}

// DeleteExpense handles DELETE /api/expenses/:id
func (h *Handlers) DeleteExpense(c *gin.Context) {
	id, ok := h.expenseID(c)
	if !ok {
		return
	}

	if err := h.expenseService.Delete(c.Request.Context(), username(c), id); err != nil {
		h.handleServiceError(c, err, "Failed to delete expense")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
	})
}

// CategorySummaries handles GET /api/categories
func (h *Handlers) CategorySummaries(c *gin.Context) {
	summaries, err := h.expenseService.CategorySummaries(c.Request.Context(), username(c))
	if err != nil {
		h.handleServiceError(c, err, "Failed to summarize categories")
		return
	}

	responseSummaries := make([]CategorySummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		responseSummaries = append(responseSummaries, CategorySummaryResponse{
			Category: summary.Category,
			Total:    summary.Total.String(),
			Count:    summary.Count,
		})
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    responseSummaries,
	})
}

// ListLanguages handles GET /api/languages
func (h *Handlers) ListLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    entity.SupportedLanguages,
	})
}

// ExportExpenses handles GET /api/expenses/export
func (h *Handlers) ExportExpenses(c *gin.Context) {
	var req ListExpensesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	filter, err := h.buildFilter(c, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	expenses, err := h.expenseService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list expenses for export")
		return
	}
	summaries, err := h.expenseService.CategorySummaries(c.Request.Context(), filter.Username)
	if err != nil {
		h.handleServiceError(c, err, "Failed to summarize categories for export")
		return
	}

	var buf bytes.Buffer
	if err := h.reportWriter.Write(&buf, expenses, summaries); err != nil {
		h.logger.Error("Failed to build expense report", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to build expense report",
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="expenses.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ProcessVoice handles POST /api/process-voice
func (h *Handlers) ProcessVoice(c *gin.Context) {
	var req ProcessVoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	result, err := h.voiceService.ProcessTranscript(c.Request.Context(), req.Transcript, req.Language)
	if err != nil {
		h.handleVoiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// handleVoiceError maps extraction failures to HTTP statuses. Transient
// failures are flagged retryable so the client keeps the transcript.
func (h *Handlers) handleVoiceError(c *gin.Context, err error) {
	var netErr *extraction.NetworkError
	var parseErr *extraction.ParseError

	switch {
	case errors.Is(err, extraction.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "transcript must not be empty",
		})
	case errors.As(err, &netErr):
		h.logger.Error("Extraction request failed", "error", err)
		c.JSON(http.StatusBadGateway, Response{
			Success:   false,
			Error:     "extraction service unavailable",
			Retryable: true,
		})
	case errors.As(err, &parseErr):
		h.logger.Error("Unparsable extraction response", "error", err)
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success:   false,
			Error:     "could not understand the transcript",
			Retryable: true,
		})
	default:
		h.logger.Error("Voice processing failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "voice processing failed",
		})
	}
}

// handleServiceError maps expense service failures to HTTP statuses.
func (h *Handlers) handleServiceError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrUsernameRequired):
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "username is required",
		})
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "expense not found",
		})
	default:
		h.logger.Error(logMsg, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "internal error",
		})
	}
}

// expenseID parses the :id path parameter, writing the error response on
// failure.
func (h *Handlers) expenseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.logger.Error("Invalid expense ID", "id", idStr, "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid expense ID",
		})
		return 0, false
	}
	return id, true
}

// buildFilter assembles the repository filter from query parameters.
func (h *Handlers) buildFilter(c *gin.Context, req ListExpensesRequest) (entity.ExpenseFilter, error) {
	filter := entity.ExpenseFilter{
		Username: username(c),
		Category: req.Category,
	}
	if req.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return entity.ExpenseFilter{}, errors.New("start_date must be in YYYY-MM-DD format")
		}
		filter.StartDate = &start
	}
	if req.EndDate != "" {
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return entity.ExpenseFilter{}, errors.New("end_date must be in YYYY-MM-DD format")
		}
		filter.EndDate = &end
	}
	return filter, nil
}

// toExpenseResponse converts domain entity to API response
func toExpenseResponse(expense *entity.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          expense.ID,
		Amount:      expense.Amount.String(),
		Category:    expense.Category,
		Description: expense.Description,
		Date:        expense.Date.Format("2006-01-02"),
		CreatedAt:   expense.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   expense.UpdatedAt.Format(time.RFC3339),
	}
}
