package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"immofds/server/internal/apperr"
	"immofds/server/internal/models"
)

const claimsKey = "auth.claims"

// ErrorResponder writes err to the client and aborts the request.
type ErrorResponder func(c *gin.Context, err error)

// RequireAuth rejects requests without a valid bearer access token and
// stores the token claims on the context.
func RequireAuth(tokens *TokenIssuer, respond ErrorResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respond(c, apperr.InvalidToken("missing bearer token"))
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			respond(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole only lets through callers holding one of roles. It must run
// after RequireAuth.
func RequireRole(respond ErrorResponder, roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			respond(c, apperr.InvalidToken("missing bearer token"))
			return
		}
		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}
		respond(c, apperr.AccessDenied("insufficient role"))
	}
}

func CurrentClaims(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// CurrentUserID returns the id of the authenticated caller, or 0.
func CurrentUserID(c *gin.Context) int64 {
	claims, ok := CurrentClaims(c)
	if !ok {
		return 0
	}
	id, _ := claims.UserID()
	return id
}
