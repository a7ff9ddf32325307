package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onlyplans/server/internal/helpers"
	"github.com/onlyplans/server/internal/middleware"
	"github.com/onlyplans/server/internal/models"
)

type RegisterForEventRequest struct {
	FormData map[string]any `json:"formData"`
}

// RegisterForEvent takes a registration while the event is published, not in
// the past, and under capacity, after validating the submitted form data
// against the event's registration form. The (event, user) unique index
// backstops the duplicate check under concurrent attempts.
func RegisterForEvent(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
		return
	}

	var req RegisterForEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	if req.FormData == nil {
		req.FormData = map[string]any{}
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	if err := gormDB.Where("id = ?", c.Param("id")).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	var existing models.Registration
	if result := gormDB.Where("event_id = ? AND user_id = ?", event.ID, user.ID).First(&existing); result.Error == nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "You are already registered for this event.")
		return
	}

	var registered int64
	gormDB.Model(&models.Registration{}).Where("event_id = ?", event.ID).Count(&registered)

	if err := event.CanAcceptRegistration(time.Now(), registered); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, capitalize(err.Error())+".")
		return
	}

	var form models.Form
	var fields []models.FormField
	if err := gormDB.Where("event_id = ?", event.ID).First(&form).Error; err == nil {
		fields = form.Fields
	}
	if formErrors := helpers.ValidateFormData(fields, req.FormData); len(formErrors) > 0 {
		helpers.RespondWithValidationErrors(c, http.StatusBadRequest, "Invalid form data.", formErrors)
		return
	}

	registration := models.Registration{
		ID:            uuid.New(),
		EventID:       event.ID,
		UserID:        user.ID,
		FormResponses: req.FormData,
		Status:        models.RegistrationPending,
		SubmittedAt:   time.Now().UTC(),
	}

	if err := gormDB.Create(&registration).Error; err != nil {
		// Concurrent duplicate lands on the unique index.
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			helpers.RespondWithError(c, http.StatusBadRequest, "You are already registered for this event.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error registering for event.")
		return
	}

	refreshEventStatistics(gormDB, &event)

	// Registration is durable; the confirmation email is best-effort.
	if m := middleware.GetMailer(c); m != nil && user.Preferences.EmailNotifications {
		if err := m.SendRegistrationConfirmation(user, &event); err != nil {
			log.Printf("failed to send confirmation email: %v", err)
		}
	}

	helpers.RespondWithData(c, http.StatusCreated, gin.H{
		"event": gin.H{
			"id":       event.ID,
			"title":    event.Title,
			"date":     event.Date,
			"location": event.Location,
		},
		"registration": registration,
	})
}

// refreshEventStatistics recomputes the denormalized statistics block from
// the registration and review tables.
func refreshEventStatistics(gormDB *gorm.DB, event *models.Event) {
	var registrations []models.Registration
	gormDB.Where("event_id = ?", event.ID).Find(&registrations)

	var reviews []models.Review
	gormDB.Where("event_id = ?", event.ID).Find(&reviews)

	event.RecomputeStatistics(registrations, reviews)
	if err := gormDB.Model(event).Updates(map[string]any{
		"stat_registered_count": event.Statistics.RegisteredCount,
		"stat_attended_count":   event.Statistics.AttendedCount,
		"stat_average_rating":   event.Statistics.AverageRating,
	}).Error; err != nil {
		log.Printf("failed to refresh statistics for event %s: %v", event.ID, err)
	}
}

// ListEventRegistrations returns every registration for an event, with the
// registrant loaded.
func ListEventRegistrations(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	if err := gormDB.Where("id = ?", c.Param("id")).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	var registrations []models.Registration
	if err := gormDB.Preload("User").Where("event_id = ?", event.ID).Find(&registrations).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error fetching event registrations.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(registrations),
		"data":    registrations,
	})
}

type RegistrationStatusRequest struct {
	Status models.RegistrationStatus `json:"status" binding:"required"`
}

// UpdateRegistrationStatus lets event staff review a registration
// (approve/reject/mark attended).
func UpdateRegistrationStatus(c *gin.Context) {
	var req RegistrationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	if !models.ValidRegistrationStatus(req.Status) {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid registration status.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var registration models.Registration
	err := gormDB.
		Where("id = ? AND event_id = ?", c.Param("registrationId"), c.Param("id")).
		First(&registration).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Registration not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving registration.")
		return
	}

	registration.Status = req.Status
	if err := gormDB.Save(&registration).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error updating registration.")
		return
	}

	var event models.Event
	if err := gormDB.Where("id = ?", registration.EventID).First(&event).Error; err == nil {
		refreshEventStatistics(gormDB, &event)
	}

	helpers.RespondWithData(c, http.StatusOK, registration)
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// CreateReview records a 1-5 rating from a registered attendee and refreshes
// the event's average.
func CreateReview(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
		return
	}

	var req ReviewRequest
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

	var event models.Event
	if err := gormDB.Where("id = ?", c.Param("id")).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	var registration models.Registration
	if err := gormDB.Where("event_id = ? AND user_id = ?", event.ID, user.ID).First(&registration).Error; err != nil {
		helpers.RespondWithError(c, http.StatusForbidden, "Only registered attendees can review this event.")
		return
	}

	var existing models.Review
	if result := gormDB.Where("event_id = ? AND user_id = ?", event.ID, user.ID).First(&existing); result.Error == nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "You have already reviewed this event.")
		return
	}

	review := models.Review{
		ID:      uuid.New(),
		EventID: event.ID,
		UserID:  user.ID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := gormDB.Create(&review).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create review.")
		return
	}

	refreshEventStatistics(gormDB, &event)

	helpers.RespondWithData(c, http.StatusCreated, review)
}

// ExportEventRegistrations serializes the event's registrants plus their
// flattened form responses to a CSV download.
func ExportEventRegistrations(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	value, exists := c.Get("event")
	if !exists {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}
	event := value.(*models.Event)

	var fields []models.FormField
	var form models.Form
	if err := gormDB.Where("event_id = ?", event.ID).First(&form).Error; err == nil {
		fields = form.Fields
	}

	var registrations []models.Registration
	if err := gormDB.Preload("User").Where("event_id = ?", event.ID).Order("submitted_at ASC").Find(&registrations).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error exporting registrations.")
		return
	}

	header, rows := helpers.BuildRegistrationRows(fields, registrations)

	var buf bytes.Buffer
	if err := helpers.WriteCSV(&buf, header, rows); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error exporting registrations.")
		return
	}

	filename := fmt.Sprintf("%s-registrations.csv", strings.ReplaceAll(event.Title, " ", "_"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
