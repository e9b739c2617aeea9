package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/service"
)

// ── Categories ───────────────────────────────────────────────────────────────

type CategoriesHandler struct{ svc service.CategoryService }

func NewCategoriesHandler(svc service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{svc: svc}
}

// Create godoc
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CategoryRequest true "Category"
// @Success      201  {object} model.Category
// @Failure      409  {object} apierror.APIError
// @Router       /v1/categories [post]
func (h *CategoriesHandler) Create(c *gin.Context) {
	var req dto.CategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cat, disposition, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Write-Disposition", disposition)
	c.JSON(http.StatusCreated, cat)
}

// Update godoc
// @Summary      Update a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string              true "Category id"
// @Param        body body dto.CategoryRequest true "Category"
// @Success      200  {object} model.Category
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/categories/{id} [put]
func (h *CategoriesHandler) Update(c *gin.Context) {
	var req dto.CategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cat, disposition, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Write-Disposition", disposition)
	c.JSON(http.StatusOK, cat)
}

// List godoc
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} model.Category
// @Router       /v1/categories [get]
func (h *CategoriesHandler) List(c *gin.Context) {
	categories, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Delete godoc
// @Summary      Delete a category
// @Tags         categories
// @Security     BearerAuth
// @Param        id path string true "Category id"
// @Success      204
// @Router       /v1/categories/{id} [delete]
func (h *CategoriesHandler) Delete(c *gin.Context) {
	disposition, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Write-Disposition", disposition)
	c.Status(http.StatusNoContent)
}

// ── Employees ────────────────────────────────────────────────────────────────

type EmployeesHandler struct{ svc service.EmployeeService }

func NewEmployeesHandler(svc service.EmployeeService) *EmployeesHandler {
	return &EmployeesHandler{svc: svc}
}

// Create godoc
// @Summary      Register an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.EmployeeRequest true "Employee"
// @Success      201  {object} model.Employee
// @Failure      409  {object} apierror.APIError
// @Router       /v1/employees [post]
func (h *EmployeesHandler) Create(c *gin.Context) {
	var req dto.EmployeeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	e, disposition, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Write-Disposition", disposition)
	c.JSON(http.StatusCreated, e)
}

// Update godoc
// @Summary      Update an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string              true "Employee id"
// @Param        body body dto.EmployeeRequest true "Employee"
// @Success      200  {object} model.Employee
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/employees/{id} [put]
func (h *EmployeesHandler) Update(c *gin.Context) {
	var req dto.EmployeeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	e, disposition, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Write-Disposition", disposition)
	c.JSON(http.StatusOK, e)
}

// List godoc
// @Summary      List employees
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} model.Employee
// @Router       /v1/employees [get]
func (h *EmployeesHandler) List(c *gin.Context) {
	employees, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

// Delete godoc
// @Summary      Remove an employee
// @Tags         employees
// @Security     BearerAuth
// @Param        id path string true "Employee id"
// @Success      204
// @Router       /v1/employees/{id} [delete]
func (h *EmployeesHandler) Delete(c *gin.Context) {
	disposition, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Write-Disposition", disposition)
	c.Status(http.StatusNoContent)
}
