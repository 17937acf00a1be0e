package rbac

import "github.com/samber/lo"

// Group names carried in the caller's identity
const (
	GroupAdmin   = "admin"
	GroupBilling = "billing"
	GroupViewer  = "viewer"
)

// Capabilities is the flattened permission set of a caller. Any
// authenticated caller may read; writes are gated per capability.
type Capabilities struct {
	CanCreate      bool
	CanEdit        bool
	CanDelete      bool
	CanViewReports bool
	IsAdmin        bool
}

// FromGroups derives capabilities from the caller's group memberships.
// Unknown groups grant nothing.
func FromGroups(groups []string) Capabilities {
	isAdmin := lo.Contains(groups, GroupAdmin)
	isBilling := lo.Contains(groups, GroupBilling)

	return Capabilities{
		CanCreate:      isAdmin || isBilling,
		CanEdit:        isAdmin || isBilling,
		CanDelete:      isAdmin,
		CanViewReports: isAdmin || isBilling,
		IsAdmin:        isAdmin,
	}
}
