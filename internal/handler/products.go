package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/service"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// Create godoc
// @Summary      Create a product
// @Description  Adds a catalog product. Profit is derived as price - capital.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ProductRequest true "Product"
// @Success      201  {object} model.Product
// @Failure      409  {object} apierror.APIError
// @Router       /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.ProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, disposition, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Write-Disposition", disposition)
	c.JSON(http.StatusCreated, p)
}

// Update godoc
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string             true "Product id"
// @Param        body body dto.ProductRequest true "Product"
// @Success      200  {object} model.Product
// @Failure      404  {object} apierror.APIError
// @Router       /v1/products/{id} [put]
func (h *ProductsHandler) Update(c *gin.Context) {
	var req dto.ProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, disposition, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Write-Disposition", disposition)
	c.JSON(http.StatusOK, p)
}

// Delete godoc
// @Summary      Delete a product
// @Tags         products
// @Security     BearerAuth
// @Param        id path string true "Product id"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/products/{id} [delete]
func (h *ProductsHandler) Delete(c *gin.Context) {
	disposition, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Write-Disposition", disposition)
	c.Status(http.StatusNoContent)
}

// Get godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product id"
// @Success      200  {object} model.Product
// @Failure      404  {object} apierror.APIError
// @Router       /v1/products/{id} [get]
func (h *ProductsHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} model.Product
// @Router       /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	products, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// LowStock godoc
// @Summary      List products low on stock
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} model.Product
// @Router       /v1/products/low-stock [get]
func (h *ProductsHandler) LowStock(c *gin.Context) {
	products, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}
