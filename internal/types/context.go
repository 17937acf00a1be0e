package types

import "context"

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID  ContextKey = "ctx_request_id"
	CtxTenantID   ContextKey = "ctx_tenant_id"
	CtxUserID     ContextKey = "ctx_user_id"
	CtxUserGroups ContextKey = "ctx_user_groups" // group memberships from the upstream authorizer

	// Default values
	DefaultTenantID = "00000000-0000-0000-0000-000000000000"
	DefaultUserID   = "00000000-0000-0000-0000-000000000000"
)

// HTTP headers carrying caller identity from the upstream authorizer
const (
	HeaderRequestID  = "X-Request-ID"
	HeaderTenantID   = "X-Tenant-ID"
	HeaderUserID     = "X-User-ID"
	HeaderUserGroups = "X-User-Groups"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetTenantID(ctx context.Context) string {
	if tenantID, ok := ctx.Value(CtxTenantID).(string); ok {
		return tenantID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// GetUserGroups returns the caller's group memberships from the context
func GetUserGroups(ctx context.Context) []string {
	if groups, ok := ctx.Value(CtxUserGroups).([]string); ok {
		return groups
	}
	return []string{}
}

// SetTenantID sets the tenant ID in the context
func SetTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, CtxTenantID, tenantID)
}

// SetUserID sets the user ID in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

// SetUserGroups sets the caller's group memberships in the context
func SetUserGroups(ctx context.Context, groups []string) context.Context {
	return context.WithValue(ctx, CtxUserGroups, groups)
}
