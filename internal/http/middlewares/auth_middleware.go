package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/reliefhub/internal/actorctx"
	"github.com/geocoder89/reliefhub/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   true,
		"message": "unauthorized access",
	})
}

// RequireAuth accepts "Authorization: <scheme> <token>"; only the token part
// is checked.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) < 2 {
			abortUnauthorized(c)
			return
		}

		claims, err := m.jwt.Verify(parts[1])
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(CtxClaims, claims)
		c.Request = c.Request.WithContext(actorctx.WithClaims(c.Request.Context(), claims))

		c.Next()
	}
}

// ClaimsFromContext returns what RequireAuth verified.
func ClaimsFromContext(c *gin.Context) (auth.Claims, bool) {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(auth.Claims)
	return claims, ok
}
