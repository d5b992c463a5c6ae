package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the normalized authenticated actor the auth middleware
// attaches to a request: either an Owner/Admin user or an Employee.
// Employee-only fields sit behind the Employee() accessor so owner-only
// logic cannot accidentally run against an employee.
type Principal struct {
	ID       primitive.ObjectID
	Name     string
	Role     string // OWNER | ADMIN | EMPLOYEE
	ShopName string

	// Verified is the owner/admin self flag. Employees never carry one;
	// their effective verification comes from the parent owner and is
	// checked target-side by the scan gate.
	Verified bool

	employee *EmployeePrincipal
}

// EmployeePrincipal holds the employee-specific part of a principal.
type EmployeePrincipal struct {
	OwnerID *primitive.ObjectID
}

// UserPrincipal builds a principal from an Owner/Admin document.
func UserPrincipal(u *User) *Principal {
	return &Principal{
		ID:       u.ID,
		Name:     u.Name,
		Role:     u.Role,
		ShopName: u.ShopName,
		Verified: u.IsProfileVerified,
	}
}

// EmployeePrincipalOf builds a principal from an Employee document.
func EmployeePrincipalOf(e *Employee) *Principal {
	return &Principal{
		ID:       e.ID,
		Name:     e.Name,
		Role:     RoleEmployee,
		ShopName: e.ShopName,
		employee: &EmployeePrincipal{OwnerID: e.Owner},
	}
}

// Employee returns the employee-specific fields, or false for owners/admins.
func (p *Principal) Employee() (*EmployeePrincipal, bool) {
	if p.employee == nil {
		return nil, false
	}
	return p.employee, true
}

// IsEmployee reports whether the principal is the Employee variant.
func (p *Principal) IsEmployee() bool {
	return p.employee != nil
}

// IsAdmin reports whether the principal may perform admin-gated actions.
func (p *Principal) IsAdmin() bool {
	return p.employee == nil && p.Role == RoleAdmin
}
