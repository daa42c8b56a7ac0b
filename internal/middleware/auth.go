package middleware

import (
	"errors"
	"fmt"
	"strings"

	"resumeai_backend/internal/logger"
	"resumeai_backend/internal/services"
	"resumeai_backend/pkg/apperrors"
	"resumeai_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims - токен внешнего провайдера идентичности. Subject = внешний ID аккаунта.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type AuthConfig struct {
	Secret string
	Issuer string
}

// AuthMiddleware проверяет HS256 bearer-токен и находит (или создает) аккаунт по sub.
// Должен стоять после DBMiddleware.
func AuthMiddleware(cfg AuthConfig, ledger services.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		claims, err := ParseToken(cfg, tokenString)
		if err != nil {
			logger.CtxDebug(c.Request.Context(), "token rejected", "error", err)
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Invalid token"))
			return
		}

		db, ok := GetDB(c)
		if !ok {
			apperrors.HandleError(c, apperrors.InternalError(errors.New("database not attached to request")))
			return
		}

		account, err := ledger.GetOrCreateAccount(db, claims.Subject, claims.Email, claims.Name)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		ctx := logger.WithAccountID(c.Request.Context(), account.ID)
		ctx = logger.WithExternalID(ctx, claims.Subject)
		c.Request = c.Request.WithContext(ctx)

		c.Set(contextkeys.AccountIDKey, account.ID)
		c.Set(contextkeys.ExternalIDKey, claims.Subject)
		c.Next()
	}
}

// ParseToken проверяет подпись, срок действия и issuer
func ParseToken(cfg AuthConfig, tokenString string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if cfg.Secret == "" {
			return nil, fmt.Errorf("jwt secret is not configured")
		}
		return []byte(cfg.Secret), nil
	}, options...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// GetAccountID извлекает ID аккаунта из контекста
func GetAccountID(c *gin.Context) string {
	return c.GetString(contextkeys.AccountIDKey)
}

func extractToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
