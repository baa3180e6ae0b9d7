package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/helloSanmi/e-vote/internal/config"
	"github.com/helloSanmi/e-vote/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t       *testing.T
	handler http.Handler
}

func (c *client) do(method, path, token string, body any) (int, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func (c *client) login(username string) string {
	c.t.Helper()
	code, _ := c.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"fullName": username, "username": username, "email": username + "@example.com", "password": "secret123",
	})
	require.Equal(c.t, http.StatusCreated, code)

	code, body := c.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": username, "password": "secret123"})
	require.Equal(c.t, http.StatusOK, code)
	return body["token"].(string)
}

func newClient(t *testing.T) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		AllowedOrigins:      []string{"http://localhost:3000"},
		JWTSecret:           "server-test",
		JWTTTL:              time.Hour,
		AdminUsernames:      []string{"chief"},
		UploadsDir:          t.TempDir(),
		PeriodWatchSchedule: "@every 1m",
	}
	srv, err := NewServer(cfg, testutil.NewDB(t), nil)
	require.NoError(t, err)
	return &client{t: t, handler: srv.Handler()}
}

func TestVotingRoundTrip(t *testing.T) {
	c := newClient(t)
	admin := c.login("chief")
	voter := c.login("voter")
	stranger := c.login("stranger")

	code, _ := c.do(http.MethodPost, "/api/admin/candidates", voter, map[string]string{"name": "Ada", "lga": "Ikeja"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body := c.do(http.MethodPost, "/api/admin/candidates", admin, map[string]string{"name": "Ada", "lga": "Ikeja"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Candidate added", body["message"])
	candidateID := body["candidate"].(map[string]any)["id"]

	now := time.Now().UTC()
	code, body = c.do(http.MethodPost, "/api/admin/period/start", admin, map[string]any{
		"startTime": now.Add(-time.Minute), "endTime": now.Add(time.Hour),
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Voting started", body["message"])
	periodID := body["periodId"]

	code, _ = c.do(http.MethodPost, "/api/vote", "", map[string]any{"candidateId": candidateID})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = c.do(http.MethodPost, "/api/vote", voter, map[string]any{"candidateId": candidateID})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "Vote cast", body["message"])

	code, body = c.do(http.MethodPost, "/api/vote", voter, map[string]any{"candidateId": candidateID})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User already voted", body["error"])

	code, body = c.do(http.MethodPost, "/api/vote", stranger, map[string]any{
		"candidateId": candidateID, "userId": "00000000-0000-0000-0000-000000000001",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "User mismatch", body["error"])

	resultsPath := fmt.Sprintf("/api/public/results?periodId=%v", periodID)
	_, body = c.do(http.MethodGet, resultsPath, voter, nil)
	assert.Equal(t, false, body["published"])

	code, body = c.do(http.MethodPost, "/api/admin/period/publish", admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Voting still ongoing", body["error"])

	code, _ = c.do(http.MethodPost, "/api/admin/period/end", admin, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = c.do(http.MethodPost, "/api/admin/period/publish", admin, nil)
	require.Equal(t, http.StatusOK, code)

	_, body = c.do(http.MethodGet, resultsPath, voter, nil)
	assert.Equal(t, true, body["published"])
	results := body["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, float64(1), results[0].(map[string]any)["votes"])

	_, body = c.do(http.MethodGet, resultsPath, stranger, nil)
	assert.Equal(t, true, body["noParticipation"])
	assert.Empty(t, body["results"])

	code, body = c.do(http.MethodDelete, fmt.Sprintf("/api/admin/period/%v", periodID), admin, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Voting period deleted", body["message"])
}

func TestPublicPeriod_NullWhenNoneStarted(t *testing.T) {
	c := newClient(t)

	req := httptest.NewRequest(http.MethodGet, "/api/public/period", nil)
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())

	code, body := c.do(http.MethodPost, "/api/admin/period/end", c.login("chief"), nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No voting period found", body["error"])
}
