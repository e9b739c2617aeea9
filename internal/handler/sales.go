package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/repository"
	"github.com/MILO-debug/POS/internal/service"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// parseDay accepts YYYY-MM-DD or RFC3339. Date-only values snap to the start
// of the day; endOfDay widens them to its last instant.
func parseDay(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", apierror.ErrValidation, raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func saleFilterFromQuery(c *gin.Context) (repository.SaleFilter, error) {
	start, err := parseDay(c.Query("start"), false)
	if err != nil {
		return repository.SaleFilter{}, err
	}
	end, err := parseDay(c.Query("end"), true)
	if err != nil {
		return repository.SaleFilter{}, err
	}
	return repository.SaleFilter{
		Start:   start,
		End:     end,
		ShiftID: c.Query("shiftId"),
		Cashier: c.Query("cashier"),
	}, nil
}

// Quote godoc
// @Summary      Price a cart without committing
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.QuoteRequest true "Cart"
// @Success      200  {object} dto.QuoteResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales/quote [post]
func (h *SalesHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Quote(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Checkout godoc
// @Summary      Commit a sale
// @Description  Finalizes the cart: writes the sale record, bumps shift income, and decrements stock. Works offline against the locally cached catalog — the response disposition says whether the sale reached the store or the local queue.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CheckoutRequest true "Cart and tender"
// @Success      201  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Commit(c.Request.Context(), sessionFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Write-Disposition", resp.Disposition)
	c.JSON(http.StatusCreated, resp)
}

// Refund godoc
// @Summary      Refund a sale
// @Description  Restores stock, rolls the shift counter back, and deletes the sale atomically. Refused while offline.
// @Tags         sales
// @Security     BearerAuth
// @Param        id path string true "Sale id"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/sales/{id} [delete]
func (h *SalesHandler) Refund(c *gin.Context) {
	if err := h.svc.Refund(c.Request.Context(), sessionFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale id"
// @Success      200  {object} model.Sale
// @Failure      404  {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
	sale, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        start   query string false "Start date YYYY-MM-DD or RFC3339"
// @Param        end     query string false "End date YYYY-MM-DD or RFC3339"
// @Param        shiftId query string false "Filter by shift"
// @Param        cashier query string false "Filter by cashier"
// @Success      200  {array} model.Sale
// @Router       /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	filter, err := saleFilterFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	sales, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

// Summary godoc
// @Summary      Per-product summary of the active shift
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.SalesSummaryResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales/summary [get]
func (h *SalesHandler) Summary(c *gin.Context) {
	resp, err := h.svc.Summary(c.Request.Context(), sessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ClearAll godoc
// @Summary      Delete every sale
// @Description  Admin maintenance. Irreversible.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} map[string]int
// @Router       /v1/sales [delete]
func (h *SalesHandler) ClearAll(c *gin.Context) {
	deleted, err := h.svc.ClearAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
