package types

import "time"

// Role names recognised by the access rules.
const (
	RoleEmployee = "Employee"
	RoleManager  = "Manager"
	RoleAdmin    = "Admin"
)

// DefaultRole is assigned when a user is created without roles.
const DefaultRole = RoleEmployee

// Roles is the optional role set accepted at user creation. A nil or empty
// value means "not provided" and resolves to the default set.
type Roles []string

// OrDefault returns r, or a fresh single-role default set when r is empty.
func (r Roles) OrDefault() Roles {
	if len(r) == 0 {
		return Roles{DefaultRole}
	}
	return r
}

// Has reports whether any of the given roles is present.
func (r Roles) Has(roles ...string) bool {
	for _, have := range r {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// User represents an account in the system.
// It contains identity, credential, role and audit metadata.
type User struct {
	// ID is the opaque identifier assigned by the store.
	ID string `json:"id" db:"id"`

	// Username is unique under case- and accent-insensitive comparison.
	Username string `json:"username" db:"username"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Roles is the non-empty set of role tags held by the user.
	Roles Roles `json:"roles" db:"roles"`

	// Active controls whether the account may authenticate.
	Active bool `json:"active" db:"active"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
