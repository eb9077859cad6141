package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/domain"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/dto"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/auth"
)

const msgInvalidCredentials = "Invalid email or password"

// Login handles POST /api/admin/login
// The token is set as an HttpOnly cookie and also returned for API clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: domain.MsgMissingRequiredFields})
		return
	}

	session, err := h.startSession(c, req.Email, req.Password)
	if err != nil {
		h.respondLoginError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Logout handles POST /api/admin/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.endSession(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

func (h *AuthHandler) startSession(c *gin.Context, email, password string) (*auth.Session, error) {
	session, err := h.auth.Login(c.Request.Context(), email, password)
	if err != nil {
		return nil, err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, session.Token, int(h.session.TTL.Seconds()), "/", "", h.session.Secure, true)
	return session, nil
}

func (h *AuthHandler) endSession(c *gin.Context) {
	token := auth.TokenFromRequest(c.Request, h.session.CookieName)
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		h.logger.Error("Failed to delete session", slog.String("error", err.Error()))
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, "", -1, "/", "", h.session.Secure, true)
}

// authenticated reports whether the request carries a live session
func (h *AuthHandler) authenticated(ctx context.Context, r *http.Request) bool {
	_, err := h.auth.Session(ctx, auth.TokenFromRequest(r, h.session.CookieName))
	return err == nil
}

func (h *AuthHandler) respondLoginError(c *gin.Context, err error) {
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: msgInvalidCredentials})
		return
	}
	h.logger.Error("Failed to create session", slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to log in"})
}
