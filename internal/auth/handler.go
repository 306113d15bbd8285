package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/db"
)

type SignupRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Role         int    `json:"role"`
	UniversityID string `json:"university_id" binding:"required"`
	Department   string `json:"department"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type VerifyOtpRequest struct {
	UserID uint `json:"user_id" binding:"required"`
	Otp    int  `json:"otp" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// SignupHandler godoc
// @Summary      Register a new account
// @Description  Creates the user and its student/faculty record, then emails a one-time code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  SignupRequest  true  "Signup info"
// @Success      201   {object} map[string]interface{}
// @Failure      409   {object} map[string]string
// @Failure      422   {object} map[string]string
// @Router       /auth/signup [post]
func SignupHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		userID, err := svc.Signup(c.Request.Context(), req.Email, req.Password, req.Name, req.Role, req.UniversityID, req.Department)
		if err != nil {
			if errors.Is(err, db.ErrDuplicateIdentity) {
				c.JSON(http.StatusConflict, gin.H{"error": "Email or university ID already registered"})
				return
			}
			if errors.Is(err, db.ErrValidationFailed) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid signup data"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Signup failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user_id": userID, "requires_otp": true})
	}
}

// LoginHandler godoc
// @Summary      Log in
// @Description  Returns tokens and profile, or a pending-OTP marker for unverified accounts
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  LoginRequest  true  "Credentials"
// @Success      200   {object} map[string]interface{}
// @Failure      401   {object} map[string]string
// @Router       /auth/login [post]
func LoginHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		res, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, db.ErrInvalidCredential) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
			return
		}

		if res.RequiresOtp {
			// No session is issued until the account is verified.
			c.JSON(http.StatusOK, gin.H{"requires_otp": true, "user_id": res.UserID})
			return
		}

		access, refresh, err := svc.IssueTokens(res.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue tokens"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"access_token":  access,
			"refresh_token": refresh,
			"profile":       res.Profile,
		})
	}
}

// VerifyOtpHandler godoc
// @Summary      Verify the one-time code
// @Description  Consumes the latest challenge and permanently marks the account verified
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  VerifyOtpRequest  true  "User id and code"
// @Success      200   {object} map[string]string
// @Failure      401   {object} map[string]string
// @Router       /auth/verify-otp [post]
func VerifyOtpHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyOtpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := svc.VerifyOtp(c.Request.Context(), req.UserID, req.Otp); err != nil {
			if errors.Is(err, db.ErrOtpInvalidOrExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "OTP invalid, used or expired"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Account verified"})
	}
}

// RefreshHandler godoc
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  RefreshRequest  true  "Refresh token"
// @Success      200   {object} map[string]string
// @Failure      401   {object} map[string]string
// @Router       /auth/refresh [post]
func RefreshHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing refresh token"})
			return
		}
		access, refresh, err := svc.Refresh(req.RefreshToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"access_token":  access,
			"refresh_token": refresh,
		})
	}
}
