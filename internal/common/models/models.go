package models

// Back-office roles. Kept as strings to match the JWT role claim.
const (
	RoleOfficer = "Officer"
	RoleManager = "Manager"
	RoleAdmin   = "Admin"
)

// Actor is the authenticated caller of a workflow operation. Services
// take it as an explicit parameter instead of reading ambient context,
// so authorization rules are visible at the call site and testable.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsManager() bool {
	return a.Role == RoleManager
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
