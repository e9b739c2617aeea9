package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/service"
)

type ShiftsHandler struct{ svc service.ShiftService }

func NewShiftsHandler(svc service.ShiftService) *ShiftsHandler { return &ShiftsHandler{svc: svc} }

// Start godoc
// @Summary      Start a shift
// @Description  Opens a shift for the cashier. Refused while offline — the per-cashier uniqueness check needs the live store.
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.StartShiftRequest true "Cashier"
// @Success      201  {object} model.Shift
// @Failure      409  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/shifts [post]
func (h *ShiftsHandler) Start(c *gin.Context) {
	var req dto.StartShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	shift, err := h.svc.Start(c.Request.Context(), sessionFrom(c), req.CashierName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shift)
}

// End godoc
// @Summary      End a shift
// @Description  Closes the shift, re-summing its income from the sale ledger.
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Shift id, or 'current'"
// @Success      200  {object} dto.EndShiftResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/shifts/{id}/end [post]
func (h *ShiftsHandler) End(c *gin.Context) {
	id := c.Param("id")
	if id == "current" {
		id = ""
	}
	resp, err := h.svc.End(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Current godoc
// @Summary      Get the caller's active shift
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} model.Shift
// @Failure      400  {object} apierror.APIError
// @Router       /v1/shifts/current [get]
func (h *ShiftsHandler) Current(c *gin.Context) {
	shift, err := h.svc.ActiveFor(c.Request.Context(), sessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// Get godoc
// @Summary      Get a shift
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Shift id"
// @Success      200  {object} model.Shift
// @Failure      404  {object} apierror.APIError
// @Router       /v1/shifts/{id} [get]
func (h *ShiftsHandler) Get(c *gin.Context) {
	shift, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// Mine godoc
// @Summary      List the caller's shifts
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} model.Shift
// @Router       /v1/shifts/mine [get]
func (h *ShiftsHandler) Mine(c *gin.Context) {
	shifts, err := h.svc.List(c.Request.Context(), sessionFrom(c).CashierName())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shifts)
}

// List godoc
// @Summary      List shifts
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        cashier query string false "Filter by cashier name"
// @Success      200  {array} model.Shift
// @Router       /v1/shifts [get]
func (h *ShiftsHandler) List(c *gin.Context) {
	shifts, err := h.svc.List(c.Request.Context(), c.Query("cashier"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shifts)
}
