package middleware

import (
	"context"
	"strings"

	"github.com/netspire/billing/internal/types"
	"github.com/gin-gonic/gin"
)

// RequestIDMiddleware assigns every request an id and echoes it back
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUID()
	}

	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// IdentityMiddleware lifts the caller identity headers set by the upstream
// authorizer into the request context. Missing headers fall back to the
// zero tenant and user; group memberships default to none.
func IdentityMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID := c.GetHeader(types.HeaderTenantID)
	if tenantID == "" {
		tenantID = types.DefaultTenantID
	}
	userID := c.GetHeader(types.HeaderUserID)
	if userID == "" {
		userID = types.DefaultUserID
	}

	var groups []string
	if raw := c.GetHeader(types.HeaderUserGroups); raw != "" {
		for _, g := range strings.Split(raw, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
	}

	ctx = types.SetTenantID(ctx, tenantID)
	ctx = types.SetUserID(ctx, userID)
	ctx = types.SetUserGroups(ctx, groups)
	c.Request = c.Request.WithContext(ctx)

	c.Next()
}
