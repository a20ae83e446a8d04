package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expense-tracker/api/http/presenter"
	"expense-tracker/pkg/expense"
)

const dateLayout = "2006-01-02"

type ExpenseHandler struct {
	uc expense.UseCase
}

func NewExpenseHandler(uc expense.UseCase) *ExpenseHandler { return &ExpenseHandler{uc: uc} }

// expenseResponse is the wire shape of a single expense. The owner appears
// only as a username; the internal owner id is never serialized.
type expenseResponse struct {
	ID          string    `json:"id"`
	User        string    `json:"user"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

func toResponse(e expense.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID.String(),
		User:        e.OwnerUsername,
		Amount:      e.Amount.StringFixed(2),
		Category:    string(e.Category),
		Description: e.Description,
		Date:        e.Date.Format(dateLayout),
		CreatedAt:   e.CreatedAt,
	}
}

// createExpenseRequest deliberately has no user or created_at field: any
// such value in the body is ignored, the owner comes from the token and the
// timestamp from the server.
type createExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Date        string           `json:"date"`
}

// Create records a new expense owned by the caller.
// @Summary Create expense
// @Tags    expenses
// @Accept  json
// @Produce json
// @Param   input body createExpenseRequest true "expense payload"
// @Security BearerAuth
// @Success 201 {object} expenseResponse
// @Failure 400 {object} presenter.ValidationResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /expenses [post]
func (h *ExpenseHandler) Create(c *fiber.Ctx) error {
	ownerID, err := callerID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "could not resolve user")
	}
	var req createExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}

	var fieldErrs []presenter.FieldError
	if req.Amount == nil {
		fieldErrs = append(fieldErrs, presenter.FieldError{Field: "amount", Reason: "this field is required"})
	}
	var date time.Time
	if strings.TrimSpace(req.Date) == "" {
		fieldErrs = append(fieldErrs, presenter.FieldError{Field: "date", Reason: "this field is required"})
	} else if date, err = time.Parse(dateLayout, req.Date); err != nil {
		fieldErrs = append(fieldErrs, presenter.FieldError{Field: "date", Reason: "must be a date in YYYY-MM-DD format"})
	}
	if len(fieldErrs) > 0 {
		return presenter.Validation(c, fieldErrs)
	}

	e, err := h.uc.Create(c.Context(), ownerID, expense.CreateInput{
		Amount:      *req.Amount,
		Category:    expense.Category(req.Category),
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		return expenseError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, toResponse(e))
}

// List returns the caller's expenses, newest first, optionally filtered by
// category and an inclusive date range.
// @Summary List expenses
// @Tags    expenses
// @Produce json
// @Param   category   query string false "category filter"
// @Param   start_date query string false "inclusive lower bound (YYYY-MM-DD)"
// @Param   end_date   query string false "inclusive upper bound (YYYY-MM-DD)"
// @Param   limit      query int    false "page size"
// @Param   offset     query int    false "page offset"
// @Security BearerAuth
// @Success 200 {array} expenseResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /expenses [get]
func (h *ExpenseHandler) List(c *fiber.Ctx) error {
	ownerID, err := callerID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "could not resolve user")
	}

	f := expense.Filter{Category: expense.Category(strings.TrimSpace(c.Query("category")))}
	f.Limit, f.Offset = parseLimitOffset(c, 100)
	var fieldErrs []presenter.FieldError
	if v := strings.TrimSpace(c.Query("start_date")); v != "" {
		if f.StartDate, err = time.Parse(dateLayout, v); err != nil {
			fieldErrs = append(fieldErrs, presenter.FieldError{Field: "start_date", Reason: "must be a date in YYYY-MM-DD format"})
		}
	}
	if v := strings.TrimSpace(c.Query("end_date")); v != "" {
		if f.EndDate, err = time.Parse(dateLayout, v); err != nil {
			fieldErrs = append(fieldErrs, presenter.FieldError{Field: "end_date", Reason: "must be a date in YYYY-MM-DD format"})
		}
	}
	if len(fieldErrs) > 0 {
		return presenter.Validation(c, fieldErrs)
	}

	es, err := h.uc.List(c.Context(), ownerID, f)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to list expenses")
	}
	res := make([]expenseResponse, 0, len(es))
	for _, e := range es {
		res = append(res, toResponse(e))
	}
	return presenter.JSON(c, http.StatusOK, res)
}

// Get returns a single expense. Records owned by other users look exactly
// like missing ones.
// @Summary Get expense by ID
// @Tags    expenses
// @Produce json
// @Param   id path string true "expense ID (UUID)"
// @Security BearerAuth
// @Success 200 {object} expenseResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /expenses/{id} [get]
func (h *ExpenseHandler) Get(c *fiber.Ctx) error {
	ownerID, err := callerID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "could not resolve user")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "expense not found")
	}
	e, err := h.uc.Get(c.Context(), ownerID, id)
	if err != nil {
		return expenseError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, toResponse(e))
}

type updateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
}

// Update applies a partial update to the caller's expense. Owner and
// created_at are not updatable fields.
// @Summary Update expense
// @Tags    expenses
// @Accept  json
// @Produce json
// @Param   id    path string               true "expense ID (UUID)"
// @Param   input body updateExpenseRequest true "fields to change"
// @Security BearerAuth
// @Success 200 {object} expenseResponse
// @Failure 400 {object} presenter.ValidationResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /expenses/{id} [patch]
func (h *ExpenseHandler) Update(c *fiber.Ctx) error {
	ownerID, err := callerID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "could not resolve user")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "expense not found")
	}
	var req updateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}

	in := expense.UpdateInput{Amount: req.Amount, Description: req.Description}
	if req.Category != nil {
		cat := expense.Category(*req.Category)
		in.Category = &cat
	}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			return presenter.Validation(c, []presenter.FieldError{
				{Field: "date", Reason: "must be a date in YYYY-MM-DD format"},
			})
		}
		in.Date = &date
	}

	e, err := h.uc.Update(c.Context(), ownerID, id, in)
	if err != nil {
		return expenseError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, toResponse(e))
}

// Delete removes the caller's expense.
// @Summary Delete expense
// @Tags    expenses
// @Produce json
// @Param   id path string true "expense ID (UUID)"
// @Security BearerAuth
// @Success 204 {object} nil
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *fiber.Ctx) error {
	ownerID, err := callerID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "could not resolve user")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "expense not found")
	}
	if err := h.uc.Delete(c.Context(), ownerID, id); err != nil {
		return expenseError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Summary reports the caller's total spend and record count for one month
// (current UTC month unless year/month query parameters say otherwise).
// @Summary Monthly summary
// @Tags    expenses
// @Produce json
// @Param   year  query int false "year, e.g. 2024"
// @Param   month query int false "month 1-12"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /expenses/summary [get]
func (h *ExpenseHandler) Summary(c *fiber.Ctx) error {
	ownerID, err := callerID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "could not resolve user")
	}
	var year, month int
	if v := c.Query("year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			year = n
		}
	}
	if v := c.Query("month"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 12 {
			month = n
		}
	}
	if year != 0 && month == 0 {
		month = 1
	}

	s, err := h.uc.MonthlySummary(c.Context(), ownerID, year, time.Month(month))
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to build summary")
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"total_amount":  s.TotalAmount.StringFixed(2),
		"expense_count": s.ExpenseCount,
	})
}

// callerID resolves the authenticated user id placed by the JWT middleware.
func callerID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, _ := c.Locals("userId").(string)
	return uuid.Parse(userIDStr)
}

// expenseError maps domain errors to HTTP responses without leaking
// storage detail.
func expenseError(c *fiber.Ctx, err error) error {
	var verrs expense.ValidationErrors
	if errors.As(err, &verrs) {
		fieldErrs := make([]presenter.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fieldErrs = append(fieldErrs, presenter.FieldError{Field: fe.Field, Reason: fe.Reason})
		}
		return presenter.Validation(c, fieldErrs)
	}
	if errors.Is(err, expense.ErrNotFound) {
		return presenter.Error(c, http.StatusNotFound, "expense not found")
	}
	return presenter.Error(c, http.StatusInternalServerError, "internal error")
}
