package service

import (
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/errors"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/model"
)

// RolePolicy holds the pure authorization decisions around roles. It never
// touches persistence; callers supply the admin counts.
type RolePolicy struct{}

// NewRolePolicy creates a new role policy.
func NewRolePolicy() *RolePolicy {
	return &RolePolicy{}
}

// IsValidRole reports whether role is one of the recognized roles.
func (p *RolePolicy) IsValidRole(role string) bool {
	return role == model.RoleAdmin || role == model.RoleUser
}

// CanChangeRole decides whether an account may move from currentRole to
// targetRole given how many other admins exist. Only demoting the sole
// admin is denied.
func (p *RolePolicy) CanChangeRole(currentRole, targetRole string, otherAdmins int64) error {
	if currentRole == model.RoleAdmin && targetRole == model.RoleUser && otherAdmins == 0 {
		return errors.ErrLastAdminProtection
	}
	return nil
}

// CanDelete decides whether an account with the given role may be deleted
// given how many other admins exist.
func (p *RolePolicy) CanDelete(role string, otherAdmins int64) error {
	if role == model.RoleAdmin && otherAdmins == 0 {
		return errors.ErrLastAdminProtection
	}
	return nil
}
