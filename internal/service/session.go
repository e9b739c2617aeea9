package service

import "github.com/MILO-debug/POS/internal/model"

// Session identifies the acting user for one request. It is built from the
// verified JWT claims and passed explicitly into every service call — there
// is no ambient current-user state.
type Session struct {
	UserID       string
	Username     string
	Role         string // "admin" | "cashier"
	EmployeeName string
}

func (s Session) IsAdmin() bool { return s.Role == model.RoleAdmin }

// CashierName is the identity sales and shifts are attributed to.
func (s Session) CashierName() string {
	if s.EmployeeName != "" {
		return s.EmployeeName
	}
	return s.Username
}
