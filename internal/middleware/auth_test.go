package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeai_backend/internal/repositories"
	"resumeai_backend/internal/services"
	"resumeai_backend/internal/testutil"
)

var testAuth = AuthConfig{Secret: "jwt-test-secret", Issuer: "https://auth.example.com"}

func signToken(t *testing.T, secret, issuer, subject string, expiresIn time.Duration) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: subject + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	ledger := services.NewLedgerService(
		repositories.NewLedgerRepository(), repositories.NewUsageRepository(), 1, 3, nil)

	router := gin.New()
	router.Use(RequestIDMiddleware(), DBMiddleware(db), AuthMiddleware(testAuth, ledger))
	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"account_id": GetAccountID(c)})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	router := newAuthRouter(t)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", testAuth.Issuer, "user-1", time.Hour), http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + signToken(t, testAuth.Secret, "https://evil.example.com", "user-1", time.Hour), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testAuth.Secret, testAuth.Issuer, "user-1", -time.Minute), http.StatusUnauthorized},
		{"no subject", "Bearer " + signToken(t, testAuth.Secret, testAuth.Issuer, "", time.Hour), http.StatusUnauthorized},
		{"valid", "Bearer " + signToken(t, testAuth.Secret, testAuth.Issuer, "user-1", time.Hour), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			assert.Equal(t, tt.status, resp.Code)
			assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))
		})
	}
}

func TestAuthMiddleware_SameAccountAcrossRequests(t *testing.T) {
	router := newAuthRouter(t)
	token := signToken(t, testAuth.Secret, testAuth.Issuer, "user-7", time.Hour)

	var ids []string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		require.Equal(t, http.StatusOK, resp.Code)
		ids = append(ids, resp.Body.String())
	}
	assert.Equal(t, ids[0], ids[1])
}

func TestRequestIDMiddleware_KeepsIncoming(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, "req-123", resp.Header().Get("X-Request-ID"))
}
