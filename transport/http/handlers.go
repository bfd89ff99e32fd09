package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/zkauth/core"
	"github.com/layer-3/zkauth/internal/slogx"
	"github.com/layer-3/zkauth/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

// Register handles user registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req struct {
		User string        `json:"user" binding:"required"`
		Y1   hexutil.Bytes `json:"y1" binding:"required"`
		Y2   hexutil.Bytes `json:"y2" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.authService.Register(c.Request.Context(), req.User, req.Y1, req.Y2); err != nil {
		writeError(c, err, "Registration failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

// Challenge handles the challenge request
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req struct {
		User string        `json:"user" binding:"required"`
		R1   hexutil.Bytes `json:"r1" binding:"required"`
		R2   hexutil.Bytes `json:"r2" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	authID, challenge, err := h.authService.CreateChallenge(c.Request.Context(), req.User, req.R1, req.R2)
	if err != nil {
		writeError(c, err, "Failed to create challenge")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"auth_id": authID,
		"c":       hexutil.Bytes(challenge),
	})
}

// Verify handles the proof response
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		AuthID string        `json:"auth_id" binding:"required"`
		S      hexutil.Bytes `json:"s" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	session, accessToken, err := h.authService.VerifyResponse(c.Request.Context(), req.AuthID, req.S)
	if err != nil {
		writeError(c, err, "Verification failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":   session.ID,
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   int(h.authService.SessionTTL() / time.Second),
	})
}

// Params returns the group parameters provers must use
func (h *AuthHandlers) Params(c *gin.Context) {
	params := h.authService.Params()
	c.JSON(http.StatusOK, gin.H{
		"p":     hexutil.Bytes(params.P.Nat().Bytes()),
		"q":     hexutil.Bytes(params.Q.Nat().Bytes()),
		"alpha": hexutil.Bytes(params.Alpha.Bytes()),
		"beta":  hexutil.Bytes(params.Beta.Bytes()),
	})
}

// Livez reports that the process is serving requests
func Livez(startTime time.Time, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(startTime).String(),
			"version": version,
		})
	}
}

// writeError maps service errors to status codes. Unexpected errors are
// logged and answered with fallback so internals do not leak.
func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, core.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, core.ErrChallengeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Challenge not found or expired"})
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, core.ErrInvalidProof):
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid proof"})
	default:
		slogx.FromContext(c.Request.Context()).Error(fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
