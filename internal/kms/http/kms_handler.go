package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/emergencyconnect/kms/internal/errors"
	"github.com/emergencyconnect/kms/internal/httputil"
	"github.com/emergencyconnect/kms/internal/kms/http/dto"
	kmsUseCase "github.com/emergencyconnect/kms/internal/kms/usecase"
	customValidation "github.com/emergencyconnect/kms/internal/validation"
)

// KMSHandler handles HTTP requests for token and key cache operations.
type KMSHandler struct {
	tokenUseCase kmsUseCase.TokenUseCase
	adminUseCase kmsUseCase.AdminUseCase
	logger       *slog.Logger
}

// NewKMSHandler creates a new KMS handler with required dependencies.
func NewKMSHandler(
	tokenUseCase kmsUseCase.TokenUseCase,
	adminUseCase kmsUseCase.AdminUseCase,
	logger *slog.Logger,
) *KMSHandler {
	return &KMSHandler{
		tokenUseCase: tokenUseCase,
		adminUseCase: adminUseCase,
		logger:       logger,
	}
}

// IssueTokenHandler issues a signed bearer token for a subject.
// POST /v1/tokens - the subject identity is vouched for by the calling
// service; this endpoint carries no authentication of its own.
// Returns 201 Created with the token, its key id, and expiration time.
func (h *KMSHandler) IssueTokenHandler(c *gin.Context) {
	var req dto.IssueTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.tokenUseCase.Issue(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIssueOutputToResponse(output))
}

// MetricsHandler returns a snapshot of the key cache.
// GET /v1/kms/metrics - requires an authenticated admin caller.
func (h *KMSHandler) MetricsHandler(c *gin.Context) {
	caller, ok := GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	stats, err := h.adminUseCase.Metrics(c.Request.Context(), caller)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapStatsToResponse(stats))
}

// RevokeUserKeysHandler evicts every cached key for a user.
// POST /v1/kms/revoke-user/:userId - requires an authenticated admin caller.
func (h *KMSHandler) RevokeUserKeysHandler(c *gin.Context) {
	caller, ok := GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	removed, err := h.adminUseCase.RevokeUserKeys(c.Request.Context(), caller, c.Param("userId"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RevokeResponse{RevokedKeys: removed})
}

// RevokeRoleKeysHandler evicts the cached signing key for a role.
// POST /v1/kms/revoke-role/:role - requires an authenticated admin caller.
func (h *KMSHandler) RevokeRoleKeysHandler(c *gin.Context) {
	caller, ok := GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	removed, err := h.adminUseCase.RevokeRoleKeys(c.Request.Context(), caller, c.Param("role"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RevokeResponse{RevokedKeys: removed})
}
