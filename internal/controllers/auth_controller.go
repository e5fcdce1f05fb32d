package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/docsmedbilling/credentialing-helpdesk/internal/middleware"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/models"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

const resetTokenTTL = 30 * time.Minute

// AuthNotifier is the subset of mail notifications the auth controller triggers.
type AuthNotifier interface {
	PasswordReset(user *models.User, token string)
}

type AuthController struct {
	userService    services.UserService
	sessionService services.SessionService
	notifier       AuthNotifier
	secretKey      []byte
	sessionTTL     time.Duration
}

func NewAuthController(userService services.UserService, sessionService services.SessionService,
	notifier AuthNotifier, secretKey string, sessionTTL time.Duration) *AuthController {
	return &AuthController{
		userService:    userService,
		sessionService: sessionService,
		notifier:       notifier,
		secretKey:      []byte(secretKey),
		sessionTTL:     sessionTTL,
	}
}

// Register godoc
// @Summary Register a staff account
// @Description Self-registration for staff users
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object true "username, email, password"
// @Success 201 {object} map[string]string
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Router /api/v1/auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error()))
		return
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Role:     models.RoleStaff,
	}
	if err := user.SetPassword(req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "password hashing failed"))
		return
	}

	if err := ac.userService.CreateUser(user); err != nil {
		c.JSON(http.StatusConflict, models.NewAPIError(models.ErrEmailTaken, "Email already registered."))
		return
	}

	log.WithField("email", user.Email).Info("Staff account registered")
	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful. Please login."})
}

// Login godoc
// @Summary Log in
// @Description Verifies credentials and sets the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object true "email, password"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Router /api/v1/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error()))
		return
	}

	user, err := ac.userService.Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrInvalidCredentials, "Invalid email or password."))
		return
	}

	session, err := ac.sessionService.CreateSession(user.ID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "failed to create session"))
		return
	}

	c.SetCookie(middleware.SessionCookieName, session.Token,
		int(ac.sessionTTL.Seconds()), "/", "", false, true)

	log.WithFields(log.Fields{"user_id": user.ID, "role": user.Role}).Info("User logged in")
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

// Logout godoc
// @Summary Log out
// @Description Deletes the session and clears the cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/v1/auth/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	if token, ok := c.Get("sessionToken"); ok {
		if err := ac.sessionService.DeleteSession(token.(string)); err != nil {
			log.WithError(err).Warn("Failed to delete session on logout")
		}
	}
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
}

// ForgotPassword godoc
// @Summary Request a password reset
// @Description Emails a reset token when the account exists; the response never discloses account existence
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object true "email"
// @Success 202 {object} map[string]string
// @Router /api/v1/auth/forgot-password [post]
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error()))
		return
	}

	if user, err := ac.userService.GetUserByEmail(req.Email); err == nil {
		token, tokenErr := ac.generateResetToken(user)
		if tokenErr != nil {
			log.WithError(tokenErr).Error("Failed to generate reset token")
		} else {
			ac.notifier.PasswordReset(user, token)
		}
	}

	// Same body whether or not the account exists.
	c.JSON(http.StatusAccepted, gin.H{
		"message": "If that email exists, reset instructions have been sent.",
	})
}

// ResetPassword godoc
// @Summary Reset a password
// @Description Consumes a reset token, sets the new password and revokes existing sessions
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object true "token, password"
// @Success 200 {object} map[string]string
// @Failure 401 {object} models.APIError
// @Router /api/v1/auth/reset-password [post]
func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error()))
		return
	}

	userID, err := ac.parseResetToken(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrResetTokenInvalid, "Reset token is invalid or expired."))
		return
	}

	if err := ac.userService.UpdatePassword(userID, req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "failed to update password"))
		return
	}

	// A reset invalidates every live session for the account.
	if err := ac.sessionService.RevokeUserSessions(userID); err != nil {
		log.WithError(err).Warn("Failed to revoke sessions after password reset")
	}

	log.WithField("user_id", userID).Info("Password reset completed")
	c.JSON(http.StatusOK, gin.H{"message": "Password updated. Please login."})
}

func (ac *AuthController) generateResetToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     strconv.FormatUint(uint64(user.ID), 10),
		"purpose": "password_reset",
		"exp":     now.Add(resetTokenTTL).Unix(),
		"iat":     now.Unix(),
	})
	return token.SignedString(ac.secretKey)
}

func (ac *AuthController) parseResetToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Pin HMAC to rule out algorithm confusion.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ac.secretKey, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims format")
	}
	if purpose, _ := claims["purpose"].(string); purpose != "password_reset" {
		return 0, fmt.Errorf("token is not a reset token")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, fmt.Errorf("token missing sub claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid sub claim: %w", err)
	}
	return uint(userID), nil
}
