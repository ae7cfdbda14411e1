package domain

const (
	RoleSuperAdmin  = "SUPER_ADMIN"
	RoleEditor      = "EDITOR"
	RoleContributor = "CONTRIBUTOR"
	RoleViewer      = "VIEWER"
)

// Decision is the outcome of an authorization check. Services turn a denied
// decision into ErrForbidden at their boundary.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision { return Decision{Allowed: true} }

func Deny(reason string) Decision { return Decision{Reason: reason} }

// ValidRole reports whether r is one of the four known roles.
func ValidRole(r string) bool {
	switch r {
	case RoleSuperAdmin, RoleEditor, RoleContributor, RoleViewer:
		return true
	}
	return false
}
