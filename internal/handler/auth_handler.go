package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reviewhub/reviewhub/internal/service"
	"github.com/reviewhub/reviewhub/pkg/logger"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type SignUpRequest struct {
	Username string `json:"username" binding:"required,max=150,username"`
	Email    string `json:"email" binding:"required,email,max=254"`
}

type TokenRequest struct {
	Username         string `json:"username" binding:"required,max=150,username"`
	ConfirmationCode string `json:"confirmation_code" binding:"required,max=36"`
}

type ResendRequest struct {
	Username string `json:"username" binding:"required,max=150,username"`
}

// SignUp registers an inactive user and emails a confirmation code.
// POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Signup request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, bindingErrorPayload(err))
		return
	}

	logger.Log.Info("Signup attempt",
		zap.String("username", req.Username),
		zap.String("ip", c.ClientIP()),
	)

	user, err := h.authService.SignUp(req.Username, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrMailDelivery) {
			// The code is already persisted; the client can use resend.
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "failed to send confirmation email",
			})
			return
		}
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": user.Username,
		"email":    user.Email,
	})
}

// Token exchanges a confirmation code for a signed session token.
// POST /api/v1/auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorPayload(err))
		return
	}

	token, err := h.authService.ExchangeToken(req.Username, req.ConfirmationCode)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCode) {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": gin.H{"confirmation_code": err.Error()},
			})
			return
		}
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Resend regenerates the confirmation code, invalidating the previous one.
// POST /api/v1/auth/resend
func (h *AuthHandler) Resend(c *gin.Context) {
	var req ResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorPayload(err))
		return
	}

	if _, err := h.authService.ResendCode(req.Username); err != nil {
		if errors.Is(err, service.ErrMailDelivery) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "failed to send confirmation email",
			})
			return
		}
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "a new confirmation code has been sent"})
}
