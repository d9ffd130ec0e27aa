package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfeed/internal/service/auth"
)

// AuthHandler exposes PIN login, OTP login and API key issuance.
type AuthHandler struct {
	svc    *auth.Service
	logger *zap.Logger
}

// NewAuthHandler constructs the HTTP handler adapter.
func NewAuthHandler(svc *auth.Service, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

type loginRequest struct {
	Phone string `json:"phone" binding:"required"`
	PIN   string `json:"pin" binding:"required"`
}

// Login verifies a PIN and returns a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone and pin are required"})
		return
	}

	token, err := h.svc.LoginWithPIN(c.Request.Context(), req.Phone, req.PIN)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

type otpRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// RequestOTP issues and delivers a one-time password.
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}

	challengeID, err := h.svc.RequestOTP(c.Request.Context(), req.Phone)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenge_id": challengeID})
}

type otpVerifyRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

// VerifyOTP exchanges a delivered code for a session token.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req otpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "challenge_id and code are required"})
		return
	}

	token, err := h.svc.VerifyOTP(c.Request.Context(), req.ChallengeID, req.Code)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

type issueKeyRequest struct {
	Label string `json:"label" binding:"required"`
}

// IssueKey mints a long-lived API key for the caller's organization. The
// plaintext is only ever returned here. Only an interactive session may
// mint keys; an API key cannot be used to create more API keys.
func (h *AuthHandler) IssueKey(c *gin.Context) {
	if c.GetString(AuthKindKey) != AuthKindSession {
		h.logger.Warn("api key issuance refused for non-session credential",
			zap.String("org_id", c.GetString(OrgIDKey)))
		c.JSON(http.StatusForbidden, gin.H{"error": "api key issuance requires a session token"})
		return
	}

	var req issueKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "label is required"})
		return
	}

	plaintext, key, err := h.svc.IssueAPIKey(c.Request.Context(), c.GetString(OrgIDKey), req.Label)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"key": plaintext, "id": key.ID, "label": key.Label})
}
