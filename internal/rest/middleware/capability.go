package middleware

import (
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/rbac"
	"github.com/netspire/billing/internal/types"
	"github.com/gin-gonic/gin"
)

// Capability names the write permissions gated per route
type Capability string

const (
	CapabilityCreate      Capability = "create"
	CapabilityEdit        Capability = "edit"
	CapabilityDelete      Capability = "delete"
	CapabilityViewReports Capability = "view_reports"
)

// RequireCapability gates a route on the caller's derived capability set.
// Reads are never gated; the services themselves are role-agnostic.
func RequireCapability(capability Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		caps := rbac.FromGroups(types.GetUserGroups(c.Request.Context()))

		allowed := false
		switch capability {
		case CapabilityCreate:
			allowed = caps.CanCreate
		case CapabilityEdit:
			allowed = caps.CanEdit
		case CapabilityDelete:
			allowed = caps.CanDelete
		case CapabilityViewReports:
			allowed = caps.CanViewReports
		}

		if !allowed {
			c.Error(ierr.NewError("insufficient permissions").
				WithHint("Your role does not allow this operation").
				WithReportableDetails(map[string]any{
					"capability": capability,
				}).
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}

		c.Next()
	}
}
