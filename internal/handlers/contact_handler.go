package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onlyplans/server/internal/helpers"
	"github.com/onlyplans/server/internal/middleware"
	"github.com/onlyplans/server/internal/models"
)

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// userLookup resolves an email address to an account, if one exists.
type userLookup func(email string) (*models.User, error)

// SubmitContactForm relays the message to the admin inbox and acknowledges
// the sender, unless a known account has opted out of email.
func SubmitContactForm(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Please provide name, email and message.")
		return
	}

	mailer := middleware.GetMailer(c)
	if mailer == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Mail service not available.")
		return
	}

	if err := mailer.SendContactMessage(req.Name, req.Email, req.Subject, req.Message); err != nil {
		log.Printf("failed to forward contact message from %s: %v", req.Email, err)
	}

	if shouldAcknowledge(dbUserLookup(c), req.Email) {
		if err := mailer.SendContactAck(req.Name, req.Email); err != nil {
			log.Printf("failed to send contact acknowledgement to %s: %v", req.Email, err)
		}
	}

	helpers.RespondWithMessage(c, http.StatusOK, "Message sent successfully.")
}

// shouldAcknowledge decides whether the sender gets the acknowledgement
// email: suppressed only when a known account has turned notifications off.
// Unknown addresses (and lookup failures) get it.
func shouldAcknowledge(find userLookup, email string) bool {
	user, err := find(models.NormalizeEmail(email))
	if err != nil || user == nil {
		return true
	}
	return user.Preferences.EmailNotifications
}

func dbUserLookup(c *gin.Context) userLookup {
	return func(email string) (*models.User, error) {
		db, exists := c.Get("db")
		if !exists {
			return nil, gorm.ErrInvalidDB
		}
		gormDB := db.(*gorm.DB)

		var user models.User
		if err := gormDB.Where("email = ?", email).First(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
}
