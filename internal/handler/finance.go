package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/service"
)

type FinanceHandler struct{ svc service.FinanceService }

func NewFinanceHandler(svc service.FinanceService) *FinanceHandler {
	return &FinanceHandler{svc: svc}
}

// rangeFromQuery defaults to the current month when no bounds are given.
func rangeFromQuery(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := now

	if raw := c.Query("start"); raw != "" {
		t, err := parseDay(raw, false)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := parseDay(raw, true)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
	}
	return start, end, nil
}

// Report godoc
// @Summary      Finance report for a date range
// @Description  Recomputes income, profit, and expenses from the ledgers. Profit uses each product's current profit figure.
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Param        start query string false "Start date YYYY-MM-DD (default: first of month)"
// @Param        end   query string false "End date YYYY-MM-DD (default: today)"
// @Success      200   {object} dto.FinanceReport
// @Router       /v1/finance/report [get]
func (h *FinanceHandler) Report(c *gin.Context) {
	start, end, err := rangeFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	report, err := h.svc.Report(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// AddExpense godoc
// @Summary      Record an expense
// @Tags         finance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ExpenseRequest true "Expense"
// @Success      201  {object} model.Expense
// @Failure      400  {object} apierror.APIError
// @Router       /v1/finance/expenses [post]
func (h *FinanceHandler) AddExpense(c *gin.Context) {
	var req dto.ExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	e, disposition, err := h.svc.AddExpense(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Write-Disposition", disposition)
	c.JSON(http.StatusCreated, e)
}

// ListExpenses godoc
// @Summary      List expenses in a range
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Param        start query string false "Start date YYYY-MM-DD"
// @Param        end   query string false "End date YYYY-MM-DD"
// @Success      200   {array} model.Expense
// @Router       /v1/finance/expenses [get]
func (h *FinanceHandler) ListExpenses(c *gin.Context) {
	start, end, err := rangeFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	expenses, err := h.svc.ListExpenses(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

// DeleteExpense godoc
// @Summary      Delete an expense
// @Tags         finance
// @Security     BearerAuth
// @Param        id path string true "Expense id"
// @Success      204
// @Router       /v1/finance/expenses/{id} [delete]
func (h *FinanceHandler) DeleteExpense(c *gin.Context) {
	disposition, err := h.svc.DeleteExpense(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Write-Disposition", disposition)
	c.Status(http.StatusNoContent)
}

// ResetExpenses godoc
// @Summary      Delete every expense in a range
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Param        start query string false "Start date YYYY-MM-DD"
// @Param        end   query string false "End date YYYY-MM-DD"
// @Success      200   {object} map[string]int
// @Router       /v1/finance/expenses [delete]
func (h *FinanceHandler) ResetExpenses(c *gin.Context) {
	start, end, err := rangeFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	deleted, err := h.svc.ResetExpenses(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
