package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/reliefhub/internal/domain/user"
	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/gin-gonic/gin"
)

type UserFinder interface {
	FindOne(ctx context.Context, filter store.Filter) (store.Document, error)
}

// RequireAdmin must run after RequireAuth. The role is read from the stored
// user, not from the token, so a promotion or demotion applies immediately.
func RequireAdmin(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		doc, err := users.FindOne(ctx, store.Filter{user.FieldEmail: claims.Email()})
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			slog.Default().ErrorContext(c.Request.Context(), "admin lookup failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   true,
				"message": "internal server error",
			})
			return
		}

		if doc == nil || !user.FromDocument(doc).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   true,
				"message": "forbidden message",
			})
			return
		}

		c.Next()
	}
}
