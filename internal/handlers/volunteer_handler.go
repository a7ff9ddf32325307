package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onlyplans/server/internal/helpers"
	"github.com/onlyplans/server/internal/middleware"
	"github.com/onlyplans/server/internal/models"
)

// ListVolunteers returns every user holding the volunteer role.
func ListVolunteers(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var volunteers []models.User
	if err := gormDB.Where("role = ?", models.RoleVolunteer).Find(&volunteers).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving volunteers.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, volunteers)
}

// MakeVolunteer promotes a user to the volunteer role.
func MakeVolunteer(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var user models.User
	if err := gormDB.Where("id = ?", c.Param("userId")).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving user.")
		return
	}

	user.Role = models.RoleVolunteer
	if err := gormDB.Save(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update user role.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, user)
}

// RemoveVolunteer demotes a volunteer back to a regular user.
func RemoveVolunteer(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var user models.User
	if err := gormDB.Where("id = ?", c.Param("userId")).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving user.")
		return
	}

	if user.Role != models.RoleVolunteer {
		helpers.RespondWithError(c, http.StatusBadRequest, "User is not a volunteer.")
		return
	}

	user.Role = models.RoleUser
	if err := gormDB.Save(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update user role.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, user)
}

type AssignVolunteersRequest struct {
	VolunteerIDs []uuid.UUID `json:"volunteerIds" binding:"required"`
}

// AssignVolunteers attaches volunteers to an event. Assigning the first
// volunteer to a draft event publishes it immediately.
func AssignVolunteers(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var req AssignVolunteersRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.VolunteerIDs) == 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Please provide valid volunteer IDs.")
		return
	}

	var event models.Event
	if err := gormDB.Preload("Volunteers").Where("id = ?", c.Param("id")).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	var volunteers []models.User
	if err := gormDB.Where("id IN ? AND role = ?", req.VolunteerIDs, models.RoleVolunteer).Find(&volunteers).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving volunteers.")
		return
	}
	if len(volunteers) != len(req.VolunteerIDs) {
		helpers.RespondWithError(c, http.StatusBadRequest, "One or more volunteer IDs are invalid.")
		return
	}

	if err := gormDB.Model(&event).Association("Volunteers").Replace(volunteers); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to assign volunteers.")
		return
	}
	event.Volunteers = volunteers

	if event.AutoPublish() {
		if err := gormDB.Model(&event).Update("status", event.Status).Error; err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update event status.")
			return
		}
	}

	mailer := middleware.GetMailer(c)
	if mailer != nil {
		for i := range volunteers {
			if err := mailer.SendVolunteerAssignment(&volunteers[i], &event); err != nil {
				log.Printf("failed to send assignment email to %s: %v", volunteers[i].Email, err)
			}
		}
	}

	helpers.RespondWithData(c, http.StatusOK, event)
}

// UnassignVolunteer detaches a single volunteer from an event.
func UnassignVolunteer(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	if err := gormDB.Preload("Volunteers").Where("id = ?", c.Param("id")).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	volunteerID, err := uuid.Parse(c.Param("volunteerId"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid volunteer ID.")
		return
	}
	if !event.HasVolunteer(volunteerID) {
		helpers.RespondWithError(c, http.StatusNotFound, "Volunteer is not assigned to this event.")
		return
	}

	if err := gormDB.Model(&event).Association("Volunteers").Delete(&models.User{ID: volunteerID}); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to unassign volunteer.")
		return
	}

	helpers.RespondWithMessage(c, http.StatusOK, "Volunteer removed from event.")
}

// MyEvents lists the events the authenticated volunteer is assigned to.
func MyEvents(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var events []models.Event
	err := gormDB.Preload("CreatedBy").
		Joins("JOIN event_volunteers ev ON ev.event_id = events.id").
		Where("ev.user_id = ?", user.ID).
		Order("date ASC").
		Find(&events).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, events)
}

type volunteerDashboard struct {
	TotalEvents        int            `json:"totalEvents"`
	TotalRegistrations int64          `json:"totalRegistrations"`
	PendingApprovals   int64          `json:"pendingApprovals"`
	UpcomingEvents     []models.Event `json:"upcomingEvents"`
	TotalVolunteers    int            `json:"totalVolunteers"`
	CompletedEvents    int            `json:"completedEvents"`
}

// VolunteerDashboard aggregates activity stats across the volunteer's
// assigned events. Volunteers may only view their own dashboard.
func VolunteerDashboard(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
		return
	}
	if user.ID.String() != c.Param("userId") && user.Role != models.RoleAdmin {
		helpers.RespondWithError(c, http.StatusForbidden, "Not authorized to access this dashboard.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	volunteerID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid volunteer ID.")
		return
	}

	var events []models.Event
	err = gormDB.Preload("Volunteers").Preload("CreatedBy").
		Joins("JOIN event_volunteers ev ON ev.event_id = events.id").
		Where("ev.user_id = ?", volunteerID).
		Find(&events).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving dashboard data.")
		return
	}

	dashboard := volunteerDashboard{
		TotalEvents:    len(events),
		UpcomingEvents: []models.Event{},
	}

	now := time.Now()
	eventIDs := make([]uuid.UUID, 0, len(events))
	for i := range events {
		eventIDs = append(eventIDs, events[i].ID)
		dashboard.TotalVolunteers += len(events[i].Volunteers)
		if events[i].Date.After(now) {
			dashboard.UpcomingEvents = append(dashboard.UpcomingEvents, events[i])
		}
		if events[i].Status == models.StatusCompleted {
			dashboard.CompletedEvents++
		}
	}

	if len(eventIDs) > 0 {
		if err := gormDB.Model(&models.Registration{}).
			Where("event_id IN ?", eventIDs).
			Count(&dashboard.TotalRegistrations).Error; err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving dashboard data.")
			return
		}
		if err := gormDB.Model(&models.Registration{}).
			Where("event_id IN ? AND status = ?", eventIDs, models.RegistrationPending).
			Count(&dashboard.PendingApprovals).Error; err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving dashboard data.")
			return
		}
	}

	helpers.RespondWithData(c, http.StatusOK, dashboard)
}
