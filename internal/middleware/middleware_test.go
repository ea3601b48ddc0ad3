package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newEngine(t *testing.T, tokens *utils.TokenService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/me", JWTAuthMiddleware(tokens), func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"username": p.Username, "role": p.Role})
	})
	r.GET("/open", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func get(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	tokens, err := utils.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	tokens.WithClock(func() time.Time { return now })
	r := newEngine(t, tokens)

	token, err := tokens.Issue(&domain.User{Username: "alice", Role: domain.RoleAdmin, Enabled: true})
	require.NoError(t, err)

	w := get(r, "/me", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"alice","role":"ADMIN"}`, w.Body.String())

	cases := map[string]string{
		"missing":      "",
		"not bearer":   "Basic " + token,
		"garbage":      "Bearer not-a-token",
		"empty bearer": "Bearer ",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := get(r, "/me", header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"error":"Unauthorized"`)
		})
	}

	disabled, err := tokens.Issue(&domain.User{Username: "bob", Role: domain.RoleClient, Enabled: false})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "Bearer "+disabled).Code)

	now = now.Add(2 * time.Hour)
	w = get(r, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired")
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	tokens, err := utils.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	r := newEngine(t, tokens)

	w := get(r, "/open", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36, "generated ids are UUIDs")

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
