package handlers

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/onlyplans/server/internal/helpers"
	"github.com/onlyplans/server/internal/middleware"
	"github.com/onlyplans/server/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

func generateToken(userID uuid.UUID, secret string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

func tokenTTL() time.Duration {
	if hours, err := helpers.StringToInt(os.Getenv("JWT_EXPIRE_HOURS")); err == nil && hours > 0 {
		return time.Duration(hours) * time.Hour
	}
	return 24 * time.Hour
}

// sendTokenResponse issues the JWT, sets the httpOnly cookie, and returns the
// token plus a sanitized user.
func sendTokenResponse(c *gin.Context, user *models.User, statusCode int) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		helpers.RespondWithError(c, http.StatusInternalServerError, "JWT_SECRET not configured.")
		return
	}

	ttl := tokenTTL()
	tokenString, err := generateToken(user.ID, secret, ttl)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token.")
		return
	}

	c.SetCookie("token", tokenString, int(ttl.Seconds()), "/", "", false, true)
	c.JSON(statusCode, gin.H{
		"success": true,
		"token":   tokenString,
		"user": gin.H{
			"id":             user.ID,
			"name":           user.Name,
			"email":          user.Email,
			"role":           user.Role,
			"profilePicture": user.ProfilePicture,
			"preferences":    user.Preferences,
			"bio":            user.Bio,
		},
	})
}

func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var existingUser models.User
	if result := gormDB.Where("email = ?", models.NormalizeEmail(req.Email)).First(&existingUser); result.Error == nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "User already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to hash the password.")
		return
	}

	user := models.User{
		ID:          uuid.New(),
		Name:        req.Name,
		Email:       req.Email,
		Password:    string(hashedPassword),
		Role:        models.RoleUser,
		Preferences: models.Preferences{EmailNotifications: true},
	}

	if err := gormDB.Create(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create user.")
		return
	}

	if m := middleware.GetMailer(c); m != nil {
		if err := m.SendWelcome(&user); err != nil {
			log.Printf("failed to send welcome email: %v", err)
		}
	}

	sendTokenResponse(c, &user, http.StatusCreated)
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var user models.User
	if err := gormDB.Where("email = ?", models.NormalizeEmail(req.Email)).First(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	sendTokenResponse(c, &user, http.StatusOK)
}

func Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
		return
	}
	helpers.RespondWithData(c, http.StatusOK, user)
}

func Logout(c *gin.Context) {
	c.SetCookie("token", "none", 10, "/", "", false, true)
	helpers.RespondWithMessage(c, http.StatusOK, "User logged out successfully.")
}

func ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var user models.User
	if err := gormDB.Where("email = ?", models.NormalizeEmail(req.Email)).First(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
		return
	}

	secret := os.Getenv("JWT_SECRET")
	resetToken, err := generateToken(user.ID, secret, time.Hour)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate reset token.")
		return
	}

	expire := time.Now().Add(time.Hour)
	user.ResetPasswordToken = resetToken
	user.ResetPasswordExpire = &expire
	if err := gormDB.Save(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to store reset token.")
		return
	}

	if m := middleware.GetMailer(c); m != nil {
		resetURL := m.ClientURL() + "/reset-password/" + resetToken
		if err := m.SendPasswordReset(&user, resetURL); err != nil {
			log.Printf("failed to send password reset email: %v", err)
		}
	}

	helpers.RespondWithMessage(c, http.StatusOK, "Password reset email sent.")
}

func ResetPassword(c *gin.Context) {
	resetToken := c.Param("token")

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	userID, err := parseResetToken(resetToken, os.Getenv("JWT_SECRET"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid or expired token.")
		return
	}

	var user models.User
	err = gormDB.
		Where("id = ? AND reset_password_token = ? AND reset_password_expire > ?", userID, resetToken, time.Now()).
		First(&user).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid or expired token.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to hash the password.")
		return
	}

	user.Password = string(hashedPassword)
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = nil
	if err := gormDB.Save(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to reset password.")
		return
	}

	helpers.RespondWithMessage(c, http.StatusOK, "Password reset successful.")
}

func parseResetToken(tokenString, secret string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	idStr, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	return uuid.Parse(idStr)
}
