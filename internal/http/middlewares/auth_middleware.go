package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/finanzcord/finanzcord/internal/actorctx"
	"github.com/finanzcord/finanzcord/internal/auth"
	"github.com/finanzcord/finanzcord/internal/cache"
	"github.com/finanzcord/finanzcord/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Guard response bodies. Clients match on these strings.
const (
	msgTokenMissing = "Token faltante"
	msgTokenExpired = "Token expirado"
	msgTokenInvalid = "Token inválido"
	msgUserNotFound = "Usuario no encontrado"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

type UserLookup interface {
	GetActiveByEmail(ctx context.Context, email string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserLookup
	cache *cache.Cache[string, user.User]
}

// NewAuthMiddleware wires the guard. users and resolved may be nil when only
// RequireAuth is used.
func NewAuthMiddleware(jwt TokenVerifier, users UserLookup, resolved *cache.Cache[string, user.User]) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users, cache: resolved}
}

// RequireAuth verifies the bearer token. Only the second space-separated part
// of the Authorization header is read; the scheme is not checked.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgTokenMissing})
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) < 2 || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgTokenInvalid})
			return
		}

		id, err := m.jwt.Verify(parts[1])
		if err != nil {
			msg := msgTokenInvalid
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = msgTokenExpired
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msg})
			return
		}

		c.Set(ctxIdentityKey, id)
		c.Next()
	}
}

// ResolveUser maps the token's email to the active user row once per request.
func (m *AuthMiddleware) ResolveUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgTokenMissing})
			return
		}

		u, err := m.lookup(c.Request.Context(), id.Email)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgUserNotFound})
				return
			}

			slog.ErrorContext(c.Request.Context(), "resolve user failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "internal_error",
					"message": "Could not resolve user",
				},
			})
			return
		}

		SetCurrentUser(c, actorctx.Actor{UserID: u.ID, Email: u.Email})
		c.Next()
	}
}

// SetCurrentUser records the resolved caller on both the gin and request contexts.
func SetCurrentUser(c *gin.Context, a actorctx.Actor) {
	c.Set(ctxUserIDKey, a.UserID)
	c.Set(ctxEmailKey, a.Email)
	c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), a))
}

func (m *AuthMiddleware) lookup(ctx context.Context, email string) (user.User, error) {
	if m.cache != nil {
		if u, ok := m.cache.Get(email); ok {
			return u, nil
		}
	}

	u, err := m.users.GetActiveByEmail(ctx, email)
	if err != nil {
		return user.User{}, err
	}

	if m.cache != nil {
		m.cache.Set(email, u)
	}
	return u, nil
}

// Forget drops a cached resolution after the user's row changed.
func (m *AuthMiddleware) Forget(email string) {
	if m.cache != nil && email != "" {
		m.cache.Delete(email)
	}
}

// Optional helpers so handlers don't need to know the magic keys.

func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(ctxIdentityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id != 0
}

// CurrentUser returns the resolved caller.
func CurrentUser(c *gin.Context) (actorctx.Actor, bool) {
	id, ok := UserIDFromContext(c)
	if !ok {
		return actorctx.Actor{}, false
	}
	email := c.GetString(ctxEmailKey)
	return actorctx.Actor{UserID: id, Email: email}, true
}
