package enums

import "fmt"

// UserRole controls which surface of the API an account can reach.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

func ParseUserRole(raw string) (UserRole, error) {
	r := UserRole(raw)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid user role: %q", raw)
	}
	return r, nil
}
