package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finanzcord/finanzcord/internal/actorctx"
	"github.com/finanzcord/finanzcord/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

var (
	alice = actorctx.Actor{UserID: 7, Email: "alice@example.com"}
	bob   = actorctx.Actor{UserID: 8, Email: "bob@example.com"}
)

// setupRouter mounts one handler. A non-nil actor stands in for ResolveUser.
func setupRouter(method, path string, h gin.HandlerFunc, actor *actorctx.Actor) *gin.Engine {
	r := gin.New()

	if actor != nil {
		a := *actor
		r.Use(func(ctx *gin.Context) {
			middlewares.SetCurrentUser(ctx, a)
			ctx.Next()
		})
	}

	r.Handle(method, path, h)

	return r
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	return doRaw(router, req)
}

func doRaw(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code, message string) {
	t.Helper()

	if w.Code != status {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, status, w.Body.String())
	}

	var resp errorResponse
	mustReadJSON(t, w, &resp)

	if resp.Error.Code != code {
		t.Fatalf("got code %q, want %q", resp.Error.Code, code)
	}
	if message != "" && resp.Error.Message != message {
		t.Fatalf("got message %q, want %q", resp.Error.Message, message)
	}
}
