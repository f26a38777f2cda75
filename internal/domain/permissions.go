package domain

// Permission is a permission key checked by guards
type Permission string

const (
	PermAppointmentsCreate           Permission = "appointments.create"
	PermAppointmentsEdit             Permission = "appointments.edit"
	PermAppointmentsCancel           Permission = "appointments.cancel"
	PermAppointmentsComplete         Permission = "appointments.complete"
	PermAppointmentsCloseWithPayment Permission = "appointments.close_with_payment"
	PermAppointmentsView             Permission = "appointments.view"
	PermSchedulesManage              Permission = "schedules.manage"
	PermCommissionsView              Permission = "commissions.view"
	PermCommissionsManage            Permission = "commissions.manage"
	PermRulesManage                  Permission = "rules.manage"
)

// Role of an actor inside a business
type Role string

const (
	RoleOwner         Role = "owner"
	RoleBusinessAdmin Role = "business_admin"
	RoleReceptionist  Role = "receptionist"
	RoleSpecialist    Role = "specialist"
)

// IsValid returns true for known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleBusinessAdmin, RoleReceptionist, RoleSpecialist:
		return true
	}
	return false
}

// IsElevated returns true for roles that bypass permission checks
func (r Role) IsElevated() bool {
	return r == RoleOwner || r == RoleBusinessAdmin
}

// PermissionSet is a hash-set of granted permissions built once per request
type PermissionSet struct {
	role  Role
	perms map[Permission]struct{}
}

// NewPermissionSet builds a permission set for a role
func NewPermissionSet(role Role, perms ...Permission) PermissionSet {
	set := PermissionSet{role: role, perms: make(map[Permission]struct{}, len(perms))}
	for _, p := range perms {
		set.perms[p] = struct{}{}
	}
	return set
}

// Role returns the role the set was built for
func (s PermissionSet) Role() Role {
	return s.role
}

// HasPermission reports whether p is granted; elevated roles always pass
func (s PermissionSet) HasPermission(p Permission) bool {
	if s.role.IsElevated() {
		return true
	}
	_, ok := s.perms[p]
	return ok
}

// HasAnyPermission reports whether at least one of perms is granted
func (s PermissionSet) HasAnyPermission(perms ...Permission) bool {
	if s.role.IsElevated() {
		return true
	}
	for _, p := range perms {
		if _, ok := s.perms[p]; ok {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every one of perms is granted
func (s PermissionSet) HasAllPermissions(perms ...Permission) bool {
	if s.role.IsElevated() {
		return true
	}
	for _, p := range perms {
		if _, ok := s.perms[p]; !ok {
			return false
		}
	}
	return true
}

// Actor is the authenticated user performing an operation
type Actor struct {
	ID          int64
	BusinessID  int64
	Role        Role
	Permissions PermissionSet
}

// IsSpecialist returns true if the actor acts as a specialist
func (a Actor) IsSpecialist() bool {
	return a.Role == RoleSpecialist
}
