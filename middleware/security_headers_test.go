package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applySecurityHeaders(t *testing.T, config SecurityConfig) http.Header {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := SecurityHeadersWithConfig(config)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec.Header()
}

func TestSecurityHeadersAreSet(t *testing.T) {
	headers := applySecurityHeaders(t, SecurityConfig{})

	assert.Equal(t, "DENY", headers.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
	assert.Contains(t, headers.Get("Strict-Transport-Security"), "max-age=31536000")
	assert.Equal(t, "strict-origin-when-cross-origin", headers.Get("Referrer-Policy"))
	assert.Contains(t, headers.Get("Content-Security-Policy"), "script-src 'self'")
}

func TestContentSecurityPolicyFollowsConfig(t *testing.T) {
	headers := applySecurityHeaders(t, SecurityConfig{
		AllowedDomains: []string{"https://api.mindly.app"},
		AllowInlineJS:  true,
	})

	csp := headers.Get("Content-Security-Policy")
	assert.Contains(t, csp, "script-src 'self' 'unsafe-inline'")
	assert.Contains(t, csp, "connect-src 'self' https://api.mindly.app")
}
