package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/homebooking/internal/domain/model"
	pkgAuth "github.com/polkiloo/homebooking/internal/pkg/auth"
)

// ActorContextKey is a gin context key for the authenticated actor.
const ActorContextKey = "actor"

// TokenParser resolves a bearer token into the calling actor.
type TokenParser interface {
	ParseToken(token string) (model.Actor, error)
}

// AuthRequired ensures the caller presents a valid bearer token before accessing handler.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "unauthenticated", "authentication required")
			return
		}

		actor, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				abort(c, http.StatusUnauthorized, "unauthenticated", "authentication required")
				return
			}
			abort(c, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}

		c.Set(ActorContextKey, actor)
		c.Next()
	}
}

// RequireRole rejects authenticated callers whose role is not listed.
// It must run after AuthRequired.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := c.Get(ActorContextKey)
		if !ok {
			abort(c, http.StatusUnauthorized, "unauthenticated", "authentication required")
			return
		}
		a, _ := actor.(model.Actor)
		if !slices.Contains(roles, a.Role) {
			abort(c, http.StatusForbidden, "unauthorized", "role is not allowed to use this endpoint")
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"code": code, "message": message})
}
