package model

import "time"

// Roles. Admins see finance/remits/profits and manage the catalog; cashiers
// sell and take lending payments.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// User is a login account. EmployeeName links cashier accounts to the
// employee identity used for shift attribution.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Role         string    `bson:"role" json:"role"` // "admin" | "cashier"
	EmployeeName string    `bson:"employeeName" json:"employeeName"`
	Active       bool      `bson:"active" json:"active"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}
