package dto

import "github.com/shopspring/decimal"

// ProductRequest covers create and full update. Profit is never accepted from
// the client — it is derived as price - capital on every write.
type ProductRequest struct {
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"required"`
	Capital  decimal.Decimal `json:"capital"`
	Category string          `json:"category"`
	Unit     string          `json:"unit" validate:"required,oneof=pcs kg"`
	Stock    decimal.Decimal `json:"stock"`
}

type CategoryRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color"`
}

type EmployeeRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username"`
}

type ExpenseRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Reason string          `json:"reason" validate:"required"`
}
