// Package roles defines the role vocabulary shared across bounded contexts.
package roles

// Role values assigned to platform users.
const (
	Student    = "STUDENT"
	Instructor = "INSTRUCTOR"
	Admin      = "ADMIN"
)

// All lists every valid role, in ascending order of privilege.
var All = []string{Student, Instructor, Admin}

// Valid reports whether role is one of the defined role values.
func Valid(role string) bool {
	for _, r := range All {
		if r == role {
			return true
		}
	}
	return false
}
