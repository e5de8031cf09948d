package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"safar/internal/apperrors"
	"safar/internal/logger"
	"safar/internal/model"
	"safar/internal/service"
	"safar/internal/session"
)

// AuthHandler handles account, session and onboarding requests
type AuthHandler struct {
	auth       *service.AuthService
	onboarding *service.OnboardingService
	sessions   *session.Manager
	logger     *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	auth *service.AuthService,
	onboarding *service.OnboardingService,
	sessions *session.Manager,
	log *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		onboarding: onboarding,
		sessions:   sessions,
		logger:     logger.OrNop(log).Named("auth_handler"),
	}
}

type signInFunc func(ctx context.Context, req *model.AuthRequest) (*model.UserSummary, error)

// RequireDatabase rejects account requests when no user store is configured
func (h *AuthHandler) RequireDatabase() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.auth.Enabled() {
			respondError(c, h.logger, apperrors.Internalf("Database not connected", nil))
			return
		}
		c.Next()
	}
}

// Action handles POST /api/auth/:action
func (h *AuthHandler) Action(c *gin.Context) {
	action := c.Param("action")
	var signIn signInFunc
	switch action {
	case "register":
		signIn = h.auth.Register
	case "login":
		signIn = h.auth.Login
	case "oauth_mock":
		signIn = h.auth.OAuthMock
	case "logout":
		h.logout(c)
		return
	default:
		respondError(c, h.logger, apperrors.NotFound("Invalid action"))
		return
	}

	var req model.AuthRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	user, err := signIn(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	token, expires, err := h.sessions.Issue(user.UserID, user.Email)
	if err != nil {
		respondError(c, h.logger, apperrors.Internal(err))
		return
	}
	h.sessions.SetCookie(c, token, expires)

	c.JSON(http.StatusOK, model.AuthResponse{Success: true, User: user})
}

func (h *AuthHandler) logout(c *gin.Context) {
	if claims, ok := session.FromContext(c); ok {
		if err := h.sessions.Revoke(c.Request.Context(), claims); err != nil {
			// The cookie is cleared regardless; the token stays valid until expiry
			h.logger.Warn("failed to revoke session",
				zap.String("user_id", claims.UserID),
				zap.Error(err))
		}
	}
	h.sessions.ClearCookie(c)
	c.JSON(http.StatusOK, model.AuthResponse{Success: true})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := session.FromContext(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}

	info, err := h.auth.Session(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if info == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": info})
}

// Onboarding handles POST /api/auth/onboarding
func (h *AuthHandler) Onboarding(c *gin.Context) {
	claims, ok := session.FromContext(c)
	if !ok {
		respondError(c, h.logger, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var req model.OnboardingRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp, err := h.onboarding.Submit(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
