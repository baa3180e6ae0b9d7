package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	userService "github.com/helloSanmi/e-vote/internal/modules/user/service"
	"github.com/helloSanmi/e-vote/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "mw-secret"

func newRouter(m *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/user", m.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	r.GET("/admin", m.RequireAuth(), m.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/optional", m.OptionalAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	return r
}

func signed(t *testing.T, email, username string, isAdmin bool) string {
	t.Helper()
	tok, _, err := token.Generate([]byte(secret), "user-1", email, username, isAdmin, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(r *gin.Engine, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := newRouter(NewAuthMiddleware(secret, nil))

	assert.Equal(t, http.StatusUnauthorized, do(r, "/user", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/user", "garbage").Code)

	w := do(r, "/user", signed(t, "a@example.com", "ada", false))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	w = do(r, "/user?token="+signed(t, "", "ada", false), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	policy := userService.NewAdminPolicy([]string{"boss@example.com"}, []string{"chief"})
	r := newRouter(NewAuthMiddleware(secret, policy))

	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", signed(t, "a@example.com", "ada", false)).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", signed(t, "a@example.com", "ada", true)).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", signed(t, "Boss@Example.com", "x", false)).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", signed(t, "", "CHIEF", false)).Code)
}

func TestOptionalAuth(t *testing.T) {
	r := newRouter(NewAuthMiddleware(secret, nil))

	w := do(r, "/optional", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(r, "/optional", "garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(r, "/optional", signed(t, "", "ada", false))
	assert.Equal(t, "user-1", w.Body.String())
}
