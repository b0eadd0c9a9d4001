package enum

// StaffRole is the role a till user signs in with
type StaffRole string

const (
	StaffRoleAdmin   StaffRole = "admin"
	StaffRoleCashier StaffRole = "cashier"
)

// IsValid reports whether r is a known role
func (r StaffRole) IsValid() bool {
	return r == StaffRoleAdmin || r == StaffRoleCashier
}

func (r StaffRole) String() string {
	return string(r)
}
