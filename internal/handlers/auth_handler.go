package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/identity"
	"tally/internal/logger"
)

// AuthHandler proxies the identity provider's email passcode login.
type AuthHandler struct {
	otp identity.OTPProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(otp identity.OTPProvider) *AuthHandler {
	return &AuthHandler{otp: otp}
}

// RequestOTPRequest represents the request payload for sending a login code
type RequestOTPRequest struct {
	Email      string `json:"email" binding:"required,email"`
	CreateUser *bool  `json:"create_user"`
}

// VerifyOTPRequest represents the request payload for completing a login
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Token string `json:"token" binding:"required,min=6,max=10"`
}

// RequestOTP sends a one-time login code to the email address
// @Summary     Request login code
// @Description Ask the identity provider to email a one-time passcode
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RequestOTPRequest true "Email"
// @Success     202 {object} MessageResponse "Code sent"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     429 {object} ErrorResponse "Too many requests"
// @Failure     502 {object} ErrorResponse "Provider error"
// @Router      /auth/otp [post]
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	createUser := true
	if req.CreateUser != nil {
		createUser = *req.CreateUser
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.otp.SendOTP(c.Request.Context(), email, createUser); err != nil {
		logger.Get().Warnw("failed to request OTP",
			"error", err,
			"request_id", logger.RequestID(c.Request.Context()),
		)
		respondWithError(c, apperrors.ErrOTPRequestFailed)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Check your email for the login code"})
}

// VerifyOTP exchanges a one-time code for a session
// @Summary     Verify login code
// @Description Exchange the emailed passcode for an access token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body VerifyOTPRequest true "Email and code"
// @Success     200 {object} identity.Session "Session"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid or expired code"
// @Failure     429 {object} ErrorResponse "Too many requests"
// @Failure     502 {object} ErrorResponse "Provider error"
// @Router      /auth/otp/verify [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	session, err := h.otp.VerifyOTP(c.Request.Context(), email, strings.TrimSpace(req.Token))
	if err != nil {
		if errors.Is(err, identity.ErrInvalidOTP) {
			respondWithError(c, apperrors.ErrInvalidOTP)
			return
		}
		logger.Get().Warnw("failed to verify OTP",
			"error", err,
			"request_id", logger.RequestID(c.Request.Context()),
		)
		respondWithError(c, apperrors.ErrOTPRequestFailed)
		return
	}

	c.JSON(http.StatusOK, session)
}
