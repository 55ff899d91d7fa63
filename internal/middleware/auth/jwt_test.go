package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func adminClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "ops-1",
		"email": "ops@highcrestlabs.com",
		"role":  "admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
}

func runMiddleware(t *testing.T, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/payments", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	handler := JWTMiddleware(JWTConfig{Secret: testSecret, Logger: zap.NewNop()})(func(c echo.Context) error {
		reached = true
		admin, err := GetAdminFromContext(c)
		assert.NoError(t, err)
		assert.Equal(t, "ops@highcrestlabs.com", admin.Email)
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	assert.NoError(t, handler(c))
	return rec, reached
}

func TestJWTMiddleware(t *testing.T) {
	t.Run("valid admin token passes through", func(t *testing.T) {
		token := signToken(t, testSecret, adminClaims())
		rec, reached := runMiddleware(t, "Bearer "+token)

		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		rec, reached := runMiddleware(t, "")

		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-bearer header is rejected", func(t *testing.T) {
		rec, reached := runMiddleware(t, "Basic dXNlcjpwYXNz")

		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		token := signToken(t, "wrong-secret", adminClaims())
		rec, reached := runMiddleware(t, "Bearer "+token)

		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		claims := adminClaims()
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		token := signToken(t, testSecret, claims)
		rec, reached := runMiddleware(t, "Bearer "+token)

		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token without admin role is forbidden", func(t *testing.T) {
		claims := adminClaims()
		claims["role"] = "student"
		token := signToken(t, testSecret, claims)
		rec, reached := runMiddleware(t, "Bearer "+token)

		assert.False(t, reached)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
