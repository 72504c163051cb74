package authmw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var testSecret = []byte("test-jwt-secret")

func newTestEcho() *echo.Echo {
	e := echo.New()
	whoami := func(c echo.Context) error {
		id, role, ok := Identity(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.JSON(http.StatusOK, map[string]any{"id": id, "role": role})
	}
	e.GET("/me", whoami, RequireAuth(testSecret))
	e.GET("/admin", whoami, RequireAuth(testSecret), RequireAdmin())
	e.GET("/open", whoami)
	return e
}

func signed(t *testing.T, secret []byte, sub, role string, ttl time.Duration) string {
	t.Helper()
	tok, _, err := tokens.NewAccessToken(secret, sub, role, time.Now().UTC(), ttl)
	require.NoError(t, err)
	return tok
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	e := newTestEcho()

	tests := []struct {
		name     string
		path     string
		header   string
		wantCode int
		wantBody string
	}{
		{name: "no header", path: "/me", wantCode: http.StatusUnauthorized, wantBody: "missing bearer token"},
		{name: "wrong scheme", path: "/me", header: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "garbage token", path: "/me", header: "Bearer nope", wantCode: http.StatusUnauthorized, wantBody: "invalid or expired token"},
		{name: "wrong secret", path: "/me", header: "Bearer " + signed(t, []byte("other"), "7", "user", time.Hour), wantCode: http.StatusUnauthorized},
		{name: "expired", path: "/me", header: "Bearer " + signed(t, testSecret, "7", "user", -time.Minute), wantCode: http.StatusUnauthorized},
		{name: "non numeric subject", path: "/me", header: "Bearer " + signed(t, testSecret, "abc", "user", time.Hour), wantCode: http.StatusUnauthorized},
		{name: "valid", path: "/me", header: "Bearer " + signed(t, testSecret, "7", "user", time.Hour), wantCode: http.StatusOK, wantBody: `"id":7`},
		{name: "admin route as user", path: "/admin", header: "Bearer " + signed(t, testSecret, "7", "user", time.Hour), wantCode: http.StatusForbidden},
		{name: "admin route as admin", path: "/admin", header: "Bearer " + signed(t, testSecret, "1", "admin", time.Hour), wantCode: http.StatusOK, wantBody: `"role":"admin"`},
		{name: "open route", path: "/open", wantCode: http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}
