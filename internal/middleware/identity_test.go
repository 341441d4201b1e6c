package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, sub float64) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runIdentity(t *testing.T, authHeader string) (*httptest.ResponseRecorder, *uint64, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *uint64
	handler := Identity(testSecret)(func(c echo.Context) error {
		got = HolderID(c)
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return rec, got, err
}

func TestIdentityAnonymous(t *testing.T) {
	rec, holder, err := runIdentity(t, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, holder)
}

func TestIdentityValidToken(t *testing.T) {
	rec, holder, err := runIdentity(t, "Bearer "+signToken(t, testSecret, 42))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, holder)
	assert.Equal(t, uint64(42), *holder)
}

func TestIdentityRejectsBadTokens(t *testing.T) {
	// Wrong signing key.
	rec, holder, err := runIdentity(t, "Bearer "+signToken(t, "other-secret", 42))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, holder)

	// Not a bearer scheme.
	rec, _, err = runIdentity(t, "Basic dXNlcjpwYXNz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token.
	rec, _, err = runIdentity(t, "Bearer not.a.jwt")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()

	guarded := RequireAuth()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, guarded(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(holderKey, uint64(7))
	require.NoError(t, guarded(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
