package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/service"
)

type LendingHandler struct{ svc service.LendingService }

func NewLendingHandler(svc service.LendingService) *LendingHandler {
	return &LendingHandler{svc: svc}
}

// Create godoc
// @Summary      Record a credit sale
// @Description  Prices the cart and books it against the borrower. Stock and shift income are untouched until repayment.
// @Tags         lending
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateLendingRequest true "Borrower and items"
// @Success      201  {object} model.Lending
// @Failure      400  {object} apierror.APIError
// @Router       /v1/lendings [post]
func (h *LendingHandler) Create(c *gin.Context) {
	var req dto.CreateLendingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	lending, disposition, err := h.svc.Create(c.Request.Context(), sessionFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Write-Disposition", disposition)
	c.JSON(http.StatusCreated, lending)
}

// Borrowers godoc
// @Summary      List borrowers with open balances
// @Tags         lending
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.BorrowerSummary
// @Router       /v1/lendings/borrowers [get]
func (h *LendingHandler) Borrowers(c *gin.Context) {
	rows, err := h.svc.Borrowers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Borrower godoc
// @Summary      Get a borrower's open lendings
// @Tags         lending
// @Produce      json
// @Security     BearerAuth
// @Param        name path string true "Borrower name"
// @Success      200  {object} dto.BorrowerDetailResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/lendings/borrowers/{name} [get]
func (h *LendingHandler) Borrower(c *gin.Context) {
	resp, err := h.svc.Borrower(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Pay godoc
// @Summary      Take a lending payment
// @Description  Settles the borrower's balance in full or in part. The repayment enters revenue as a synthesized sale on the active shift.
// @Tags         lending
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name path string             true "Borrower name"
// @Param        body body dto.PaymentRequest true "Payment"
// @Success      200  {object} dto.PaymentResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/lendings/borrowers/{name}/payments [post]
func (h *LendingHandler) Pay(c *gin.Context) {
	var req dto.PaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Pay(c.Request.Context(), sessionFrom(c), c.Param("name"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
