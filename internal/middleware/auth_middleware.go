package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onlyplans/server/internal/helpers"
	"github.com/onlyplans/server/internal/models"
)

// extractToken pulls the JWT from the Authorization header or, failing that,
// the httpOnly cookie set at login.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

func parseUserID(tokenString, secret string) (uuid.UUID, error) {
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

func loadUser(c *gin.Context, userID uuid.UUID) (*models.User, bool) {
	db, exists := c.Get("db")
	if !exists {
		return nil, false
	}
	gormDB := db.(*gorm.DB)

	var user models.User
	if err := gormDB.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, false
	}
	user.Password = ""
	return &user, true
}

// JWTAuthMiddleware rejects requests without a valid token and attaches the
// acting user to the context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
			c.Abort()
			return
		}

		userID, err := parseUserID(tokenString, os.Getenv("JWT_SECRET"))
		if err != nil {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
			c.Abort()
			return
		}

		user, ok := loadUser(c, userID)
		if !ok {
			helpers.RespondWithError(c, http.StatusUnauthorized, "User not found.")
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// OptionalJWTAuthMiddleware attaches the user when a valid token is present
// but lets anonymous requests through. Used on the public event listing,
// which serves extra scoped views to authenticated callers.
func OptionalJWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}
		userID, err := parseUserID(tokenString, os.Getenv("JWT_SECRET"))
		if err != nil {
			c.Next()
			return
		}
		if user, ok := loadUser(c, userID); ok {
			c.Set("user", user)
			c.Set("user_id", user.ID)
		}
		c.Next()
	}
}

// RequireRoles rejects the request unless the attached user's role is one of
// the allowed roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
			c.Abort()
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		helpers.RespondWithError(c, http.StatusForbidden, "User role "+user.Role+" is not authorized to access this route.")
		c.Abort()
	}
}

// RequireEventManager loads the event named in the route and allows the
// request only for admins, the event's creator, or an assigned volunteer.
func RequireEventManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
			c.Abort()
			return
		}

		eventID := c.Param("id")
		if eventID == "" {
			eventID = c.PostForm("eventId")
		}

		db, exists := c.Get("db")
		if !exists {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
			c.Abort()
			return
		}
		gormDB := db.(*gorm.DB)

		var event models.Event
		if err := gormDB.Preload("Volunteers").Where("id = ?", eventID).First(&event).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			} else {
				helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
			}
			c.Abort()
			return
		}

		if user.Role != models.RoleAdmin && event.CreatedByID != user.ID && !event.HasVolunteer(user.ID) {
			helpers.RespondWithError(c, http.StatusForbidden, "Not authorized to manage this event.")
			c.Abort()
			return
		}

		c.Set("event", &event)
		c.Next()
	}
}

// CurrentUser returns the user attached by the auth middleware, or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get("user")
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
