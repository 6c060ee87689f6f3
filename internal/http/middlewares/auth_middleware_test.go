package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finanzcord/finanzcord/internal/actorctx"
	"github.com/finanzcord/finanzcord/internal/auth"
	"github.com/finanzcord/finanzcord/internal/cache"
	"github.com/finanzcord/finanzcord/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	byEmail map[string]user.User
	calls   int
}

func (f *fakeUsers) GetActiveByEmail(_ context.Context, email string) (user.User, error) {
	f.calls++
	u, ok := f.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func newGuardedRouter(m *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", m.RequireAuth(), m.ResolveUser(), func(c *gin.Context) {
		a, ok := CurrentUser(c)
		ctxActor, _ := actorctx.ActorFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"ok": ok, "id": a.UserID, "email": a.Email, "ctx_id": ctxActor.UserID})
	})
	r.GET("/token-only", m.RequireAuth(), func(c *gin.Context) {
		id, _ := IdentityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"email": id.Email})
	})
	return r
}

func doGet(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func messageOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestRequireAuth_Rejections(t *testing.T) {
	mgr := auth.NewManager("secret", time.Hour)
	expired, err := auth.NewManager("secret", -time.Hour).Issue(auth.Identity{Email: "a@x.com"})
	require.NoError(t, err)
	foreign, err := auth.NewManager("other", time.Hour).Issue(auth.Identity{Email: "a@x.com"})
	require.NoError(t, err)

	r := newGuardedRouter(NewAuthMiddleware(mgr, &fakeUsers{}, nil))

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "missing header", header: "", want: "Token faltante"},
		{name: "expired", header: "Bearer " + expired, want: "Token expirado"},
		{name: "wrong signature", header: "Bearer " + foreign, want: "Token inválido"},
		{name: "garbage", header: "Bearer not-a-jwt", want: "Token inválido"},
		{name: "no scheme", header: "tokenwithoutspace", want: "Token inválido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, "/token-only", tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.want, messageOf(t, w))
		})
	}
}

func TestRequireAuth_AnySchemeIsAccepted(t *testing.T) {
	mgr := auth.NewManager("secret", time.Hour)
	tok, err := mgr.Issue(auth.Identity{Email: "a@x.com"})
	require.NoError(t, err)

	r := newGuardedRouter(NewAuthMiddleware(mgr, &fakeUsers{}, nil))

	w := doGet(r, "/token-only", "JWT "+tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"a@x.com"}`, w.Body.String())
}

func TestResolveUser(t *testing.T) {
	mgr := auth.NewManager("secret", time.Hour)
	users := &fakeUsers{byEmail: map[string]user.User{"a@x.com": {ID: 3, Email: "a@x.com", Name: "A"}}}
	resolved := cache.New[string, user.User](time.Minute)
	m := NewAuthMiddleware(mgr, users, resolved)
	r := newGuardedRouter(m)

	tok, err := mgr.Issue(auth.Identity{Email: "a@x.com"})
	require.NoError(t, err)

	w := doGet(r, "/me", "Bearer "+tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"id":3,"email":"a@x.com","ctx_id":3}`, w.Body.String())

	// second request is served from the cache
	doGet(r, "/me", "Bearer "+tok)
	assert.Equal(t, 1, users.calls)

	m.Forget("a@x.com")
	doGet(r, "/me", "Bearer "+tok)
	assert.Equal(t, 2, users.calls)
}

func TestResolveUser_UnknownEmail(t *testing.T) {
	mgr := auth.NewManager("secret", time.Hour)
	r := newGuardedRouter(NewAuthMiddleware(mgr, &fakeUsers{}, nil))

	tok, err := mgr.Issue(auth.Identity{Email: "ghost@x.com"})
	require.NoError(t, err)

	w := doGet(r, "/me", "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Usuario no encontrado", messageOf(t, w))
}
