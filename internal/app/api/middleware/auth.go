package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authsvc "github.com/petalmall/membership/internal/app/service/auth"
	"github.com/petalmall/membership/pkg/apperr"
	cfgpkg "github.com/petalmall/membership/pkg/config"
	"github.com/petalmall/membership/pkg/response"
	"github.com/petalmall/membership/pkg/types"
)

const identityKey = "identity"

// RequireAuth verifies the auth token from the session cookie (or a
// Bearer header) and attaches the resulting Identity to the context.
// Requests without a valid identity are rejected with 401.
func RequireAuth(issuer *authsvc.TokenIssuer, cfg *cfgpkg.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(cfg.Auth.CookieName)
		if raw == "" {
			if authz := c.GetHeader("Authorization"); authz != "" {
				parts := strings.SplitN(authz, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					raw = strings.TrimSpace(parts[1])
				}
			}
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorT(apperr.CodeUnauthorized, "not signed in"))
			return
		}

		id, err := issuer.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorT(apperr.CodeUnauthorized, "session is invalid, please sign in again"))
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireAdmin rejects non-admin identities. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorT(apperr.CodeUnauthorized, "not signed in"))
			return
		}
		if !id.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden,
				response.ErrorT(apperr.CodeForbidden, "admin access required"))
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the verified caller identity, if any.
func IdentityFrom(c *gin.Context) (types.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return types.Identity{}, false
	}
	id, ok := v.(types.Identity)
	return id, ok
}
