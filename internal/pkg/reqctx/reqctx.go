// Package reqctx holds the request-scoped values shared between the HTTP
// middlewares and the application layer.
package reqctx

import "context"

// contextKey is an unexported type for context keys in this package.
// Using a custom type prevents collisions with keys from other packages
// that might use the same underlying string value.
type contextKey string

const (
	HeaderXRequestId = "X-Request-Id"

	// ContextKeyRequestID is the context key for the request ID.
	ContextKeyRequestID contextKey = "x-request-id"
	// ContextKeyPrincipal is the context key for the authenticated caller.
	ContextKeyPrincipal contextKey = "principal"
)

// AccountType mirrors the role claim issued by the auth service.
type AccountType string

const (
	AccountAdmin      AccountType = "Admin"
	AccountStudent    AccountType = "Student"
	AccountInstructor AccountType = "Instructor"
)

// Principal is the caller identity extracted from a bearer token.
type Principal struct {
	UserID      string
	Email       string
	AccountType AccountType
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

// RequestID returns the request id stored in ctx, or "" when absent.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// PrincipalFrom uses the comma-ok idiom so unauthenticated routes can check
// for a caller without panicking.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ContextKeyPrincipal).(Principal)
	return p, ok
}
