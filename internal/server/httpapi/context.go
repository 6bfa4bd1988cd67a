package httpapi

import (
	"context"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/models"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated browser identity attached to a request by
// the session middleware. Absence from the context means the request is
// anonymous.
type Principal struct {
	User      *models.User
	Token     string
	CSRFToken string
}

// PrincipalFromContext extracts the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

func withPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
