package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type tenantKey struct{}

const tenantContextKey = "tenant_id"

// TenantResolver resolves a tenant ID from a bearer token.
type TenantResolver interface {
	ResolveTenant(ctx context.Context, token string) (string, error)
}

// TenantFromContext returns the tenant ID from context, if present.
func TenantFromContext(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(tenantKey{}).(string)
	return tenantID, ok
}

// WithTenant returns a copy of ctx carrying tenantID.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// AuthMiddleware enforces bearer token authentication. Browsers cannot set
// headers on websocket upgrades, so an access_token query parameter is
// accepted as well.
func AuthMiddleware(resolver TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("access_token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		tenantID, err := resolver.ResolveTenant(c.Request.Context(), token)
		if err != nil || tenantID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid bearer token"})
			return
		}
		setTenant(c, tenantID)
		c.Next()
	}
}

// StaticTenant assigns every request to tenantID. Used when auth is disabled.
func StaticTenant(tenantID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		setTenant(c, tenantID)
		c.Next()
	}
}

func setTenant(c *gin.Context, tenantID string) {
	c.Set(tenantContextKey, tenantID)
	c.Request = c.Request.WithContext(WithTenant(c.Request.Context(), tenantID))
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
