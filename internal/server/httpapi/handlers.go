package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techasish/accountd/internal/common"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	OTP string `json:"otp"`
}

type sendResetOTPRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body."})
		return
	}

	token, err := s.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.setSessionCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Account created."})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body."})
		return
	}

	token, err := s.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged in."})
}

func (s *Server) logout(c *gin.Context) {
	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out."})
}

func (s *Server) isAuthenticated(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) sendVerifyOTP(c *gin.Context) {
	alreadyVerified, err := s.service.SendVerifyOTP(c.Request.Context(), sessionUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if alreadyVerified {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Account is already verified."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification OTP sent to your email."})
}

func (s *Server) verifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body."})
		return
	}

	if err := s.service.VerifyEmail(c.Request.Context(), sessionUserID(c), req.OTP); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email verified successfully."})
}

func (s *Server) sendResetOTP(c *gin.Context) {
	var req sendResetOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body."})
		return
	}

	if err := s.service.SendResetOTP(c.Request.Context(), req.Email); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP sent to your email."})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body."})
		return
	}

	if err := s.service.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password has been reset successfully."})
}

func (s *Server) userData(c *gin.Context) {
	user, err := s.service.Profile(c.Request.Context(), sessionUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"userData": gin.H{
			"name":              user.Name,
			"isAccountVerified": user.IsAccountVerified,
		},
	})
}

// respondError maps service errors onto statuses and stable client messages.
// Unknown errors are logged and reported as a bare 500.
func (s *Server) respondError(c *gin.Context, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, common.ErrorValidation):
		status, message = http.StatusBadRequest, "All fields are required."
	case errors.Is(err, common.ErrorAlreadyExists):
		status, message = http.StatusConflict, "User already exists."
	case errors.Is(err, common.ErrorUnauthorized):
		status, message = http.StatusUnauthorized, "Invalid email or password."
	case errors.Is(err, common.ErrorNotFound):
		status, message = http.StatusNotFound, "User not found."
	case errors.Is(err, common.ErrInvalidOTP):
		status, message = http.StatusBadRequest, "Invalid OTP."
	case errors.Is(err, common.ErrExpiredOTP):
		status, message = http.StatusUnauthorized, "OTP expired."
	default:
		s.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		status, message = http.StatusInternalServerError, "Internal server error."
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}

func (s *Server) setSessionCookie(c *gin.Context, token string) {
	if s.secureCookies {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteStrictMode)
	}
	c.SetCookie(common.SessionCookieName, token, int(s.sessionTTL.Seconds()), "/", "", s.secureCookies, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	if s.secureCookies {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteStrictMode)
	}
	c.SetCookie(common.SessionCookieName, "", -1, "/", "", s.secureCookies, true)
}
