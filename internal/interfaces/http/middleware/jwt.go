package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/arahumroh/backend/internal/infrastructure/auth"
	"github.com/arahumroh/backend/internal/infrastructure/logger"
	"github.com/arahumroh/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey    = "jwt_claims"
	JWTAccountIDKey = "jwt_account_id"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// ErrMissingCredentials is passed to OnError when no bearer token was sent
var ErrMissingCredentials = errors.New("missing bearer credentials")

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// Optional callback if token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{JWTService: jwtService})
}

// JWTAuthMiddlewareWithConfig authenticates the bearer token and stores the
// claims and account id in the gin context. The request logger gains an
// account_id field.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, log, ErrMissingCredentials, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, log, ErrMissingCredentials, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			handleAuthError(c, cfg, log, ErrMissingCredentials, "Missing token")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, log, err, "Token validation failed")
			return
		}
		accountID, err := claims.AccountID()
		if err != nil {
			handleAuthError(c, cfg, log, err, "Token has no account")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTAccountIDKey, accountID)

		ctx := c.Request.Context()
		ctx, enriched := logger.WithAccountID(ctx, logger.FromContext(ctx), accountID.String())
		c.Request = c.Request.WithContext(ctx)
		logger.SetGinLogger(c, enriched)

		c.Next()
	}
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, log *zap.Logger, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code := dto.ErrCodeUnauthorized
	errorMessage := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		errorMessage = "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code = dto.ErrCodeTokenInvalid
		errorMessage = "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingAccountID):
		code = dto.ErrCodeTokenInvalid
		errorMessage = "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, errorMessage, logger.GetGinRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTAccountID returns the authenticated account, or false outside the JWT middleware
func GetJWTAccountID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(JWTAccountIDKey); exists {
		if id, ok := v.(uuid.UUID); ok && id != uuid.Nil {
			return id, true
		}
	}
	return uuid.Nil, false
}
