package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"foreverhome/internal/auth"
	"foreverhome/internal/errors"
	"foreverhome/internal/gate"
)

// AuthHandler handles token lifecycle endpoints. Tokens are issued by the
// identity provider; this service can only refuse them.
type AuthHandler struct {
	revocations auth.RevocationList
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(revocations auth.RevocationList, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{revocations: revocations, logger: logger}
}

// Logout godoc
// @Summary Revoke the presented token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	id, ok := gate.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.MapErrorToHTTP(errors.ErrUnauthorized).ToErrorResponse())
	}
	if id.TokenID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "token carries no jti claim",
			Code:  "TOKEN_NOT_REVOCABLE",
		})
	}

	ttl := time.Until(id.ExpiresAt)
	if ttl > 0 {
		if err := h.revocations.Revoke(c.Request().Context(), id.TokenID, ttl); err != nil {
			h.logger.Error("token revocation failed", zap.String("jti", id.TokenID), zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
				Error: "failed to logout",
				Code:  "LOGOUT_FAILED",
			})
		}
	}

	h.logger.Info("token revoked", zap.String("email", id.Email), zap.String("jti", id.TokenID))
	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}
