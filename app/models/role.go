package models

// Role is the single role a user holds. It is fixed at account creation.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// SelfRegistrable reports whether the role may be picked on the public signup form.
func (r Role) SelfRegistrable() bool {
	return r == RoleStudent || r == RoleTeacher
}

func (r Role) String() string {
	return string(r)
}
