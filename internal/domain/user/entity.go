package user

type Role string

const (
	RoleAdmin    Role = "admin"    // Reviews correction requests
	RoleEmployee Role = "employee" // Checks in/out and requests corrections
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// Identity is the already authenticated caller of a core operation.
type Identity struct {
	UserID     string
	EmployeeID string
	Role       Role
}

// IsAdmin checks if the caller may review corrections
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Reviewer returns the identifier recorded as reviewed_by.
func (i Identity) Reviewer() string {
	if i.UserID != "" {
		return i.UserID
	}
	return i.EmployeeID
}
