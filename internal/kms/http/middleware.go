package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/emergencyconnect/kms/internal/errors"
	"github.com/emergencyconnect/kms/internal/httputil"
	kmsUseCase "github.com/emergencyconnect/kms/internal/kms/usecase"
)

// AuthenticationMiddleware provides authentication via Bearer token in the Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Verifies it using tokenUseCase.Verify()
// 3. Stores the verified subject in the request context
// 4. Allows downstream handlers to access the subject via GetSubject()
//
// Error handling:
//   - Missing/malformed Authorization header → 401 Unauthorized
//   - Invalid, expired, or wrong-environment token → 401 Unauthorized
func AuthenticationMiddleware(
	tokenUseCase kmsUseCase.TokenUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		tokenString := authHeader[len(bearerPrefix):]
		if tokenString == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		claims, err := tokenUseCase.Verify(c.Request.Context(), tokenString)
		if err != nil {
			logger.Debug("authentication failed",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		// Store the verified subject in context
		subject := claims.SubjectClaims
		ctx := WithSubject(c.Request.Context(), &subject)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.Int64("subject_id", subject.ID),
			slog.String("role", string(subject.Role)))

		c.Next()
	}
}
