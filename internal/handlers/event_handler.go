package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onlyplans/server/internal/helpers"
	"github.com/onlyplans/server/internal/middleware"
	"github.com/onlyplans/server/internal/models"
)

// ListEvents serves the public listing plus the authenticated scoped views
// (registered/managed/volunteering) and the recommendation block.
func ListEvents(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	pageNum, err := helpers.StringToInt(c.DefaultQuery("page", "1"))
	if err != nil || pageNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}
	limitNum, err := helpers.StringToInt(c.DefaultQuery("limit", "10"))
	if err != nil || limitNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	user := middleware.CurrentUser(c)
	listType := c.Query("type")
	if listType != "" && user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
		return
	}

	query := gormDB.Model(&models.Event{})

	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if tags := c.Query("tags"); tags != "" {
		// Tags are stored as a JSON array; match any requested tag.
		var conds []string
		var args []any
		for _, tag := range strings.Split(tags, ",") {
			conds = append(conds, "tags::jsonb @> ?")
			args = append(args, fmt.Sprintf("[%q]", tag))
		}
		query = query.Where(strings.Join(conds, " OR "), args...)
	}
	if startDate := c.Query("startDate"); startDate != "" {
		if t, err := helpers.ParseDate(startDate); err == nil {
			query = query.Where("date >= ?", t)
		}
	}
	if endDate := c.Query("endDate"); endDate != "" {
		if t, err := helpers.ParseDate(endDate); err == nil {
			query = query.Where("date <= ?", t)
		}
	}

	switch listType {
	case "registered":
		query = query.Where("id IN (SELECT event_id FROM registrations WHERE user_id = ?)", user.ID)
	case "managed":
		query = query.Where(
			"created_by_id = ? OR id IN (SELECT event_id FROM event_volunteers WHERE user_id = ?)",
			user.ID, user.ID,
		)
	case "volunteering":
		query = query.Where("id IN (SELECT event_id FROM event_volunteers WHERE user_id = ?)", user.ID)
	}

	// Event staff may see non-published events; everyone else only sees
	// published ones unless they ask for "all" explicitly.
	status := c.Query("status")
	isStaff := user != nil && (user.Role == models.RoleAdmin || user.Role == models.RoleVolunteer)
	switch {
	case status != "" && status != "all":
		query = query.Where("status = ?", status)
	case status == "all" && isStaff:
		// no status filter
	case listType != "" && isStaff:
		// staff scoped views include drafts
	default:
		query = query.Where("status = ?", models.StatusPublished)
	}

	var totalCount int64
	query.Count(&totalCount)

	var events []models.Event
	offset := (pageNum - 1) * limitNum
	err = query.Preload("CreatedBy").Preload("Volunteers").
		Order("date ASC").Offset(offset).Limit(limitNum).Find(&events).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	recommended := recommendedEvents(gormDB, c.Query("userId"), user, events)

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"data":              events,
		"recommendedEvents": recommended,
		"pagination": gin.H{
			"page":  pageNum,
			"limit": limitNum,
			"total": totalCount,
			"pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
		},
	})
}

// recommendedEvents returns up to 3 extra events in the user's preferred
// categories that are not already in the primary page. Most recently created
// first, no further ranking.
func recommendedEvents(gormDB *gorm.DB, userIDParam string, ctxUser *models.User, page []models.Event) []models.Event {
	prefUser := ctxUser
	if userIDParam != "" {
		var u models.User
		if err := gormDB.Where("id = ?", userIDParam).First(&u).Error; err == nil {
			prefUser = &u
		}
	}
	if prefUser == nil || len(prefUser.Preferences.Categories) == 0 {
		return []models.Event{}
	}

	excluded := make([]uuid.UUID, 0, len(page))
	for _, e := range page {
		excluded = append(excluded, e.ID)
	}

	query := gormDB.Model(&models.Event{}).
		Where("category IN ?", prefUser.Preferences.Categories).
		Where("status = ?", models.StatusPublished)
	if len(excluded) > 0 {
		query = query.Where("id NOT IN ?", excluded)
	}

	var recommended []models.Event
	if err := query.Preload("CreatedBy").Order("created_at DESC").Limit(3).Find(&recommended).Error; err != nil {
		return []models.Event{}
	}
	return recommended
}

func GetEvent(c *gin.Context) {
	eventID := c.Param("id")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	err := gormDB.Preload("CreatedBy").Preload("Volunteers").Where("id = ?", eventID).First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	var registrationCount int64
	gormDB.Model(&models.Registration{}).Where("event_id = ?", event.ID).Count(&registrationCount)

	helpers.RespondWithData(c, http.StatusOK, gin.H{
		"event":             event,
		"registrationCount": registrationCount,
	})
}

// parseEventForm reads the shared multipart fields for create/update.
func parseEventForm(c *gin.Context, event *models.Event) error {
	if title := c.PostForm("title"); title != "" {
		event.Title = title
	}
	if description := c.PostForm("description"); description != "" {
		event.Description = description
	}
	if dateStr := c.PostForm("date"); dateStr != "" {
		date, err := helpers.ParseDate(dateStr)
		if err != nil {
			return fmt.Errorf("invalid date format")
		}
		event.Date = date
	}
	if endDateStr := c.PostForm("endDate"); endDateStr != "" {
		endDate, err := helpers.ParseDate(endDateStr)
		if err != nil {
			return fmt.Errorf("invalid end date format")
		}
		event.EndDate = &endDate
	}
	if location := c.PostForm("location"); location != "" {
		event.Location = location
	}
	if address := c.PostForm("address"); address != "" {
		event.Address = address
	}
	if category := c.PostForm("category"); category != "" {
		event.Category = category
	}
	if maxStr := c.PostForm("maxAttendees"); maxStr != "" {
		max, err := helpers.StringToInt(maxStr)
		if err != nil || max < 1 {
			return fmt.Errorf("invalid maxAttendees")
		}
		event.MaxAttendees = &max
	}
	if priceStr := c.PostForm("price"); priceStr != "" {
		var price float64
		if _, err := fmt.Sscanf(priceStr, "%f", &price); err != nil || price < 0 {
			return fmt.Errorf("invalid price")
		}
		event.Price = price
	}
	if tagsStr := c.PostForm("tags"); tagsStr != "" {
		if err := json.Unmarshal([]byte(tagsStr), &event.Tags); err != nil {
			return fmt.Errorf("invalid tags")
		}
	}
	if scheduleStr := c.PostForm("schedule"); scheduleStr != "" {
		if err := json.Unmarshal([]byte(scheduleStr), &event.Schedule); err != nil {
			return fmt.Errorf("invalid schedule")
		}
	}
	if speakersStr := c.PostForm("speakers"); speakersStr != "" {
		if err := json.Unmarshal([]byte(speakersStr), &event.Speakers); err != nil {
			return fmt.Errorf("invalid speakers")
		}
	}
	return nil
}

// attachSpeakerImages maps uploaded speaker images onto speakers using the
// speakerImageIndices field: indices[speakerIndex] = uploaded file index.
func attachSpeakerImages(c *gin.Context, event *models.Event) error {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	files := form.File["speakerImages"]
	if len(files) == 0 {
		return nil
	}

	var indices []int
	if idxStr := c.PostForm("speakerImageIndices"); idxStr != "" {
		if err := json.Unmarshal([]byte(idxStr), &indices); err != nil {
			return fmt.Errorf("invalid speakerImageIndices")
		}
	}

	for speakerIdx, fileIdx := range indices {
		if speakerIdx >= len(event.Speakers) || fileIdx < 0 || fileIdx >= len(files) {
			continue
		}
		path, err := helpers.UploadFile(c, files[fileIdx], "speakers")
		if err != nil {
			return err
		}
		event.Speakers[speakerIdx].Image = path
	}
	return nil
}

// speakerIndex resolves a path parameter to a position in the event's
// speaker list. Reports false for non-numeric or out-of-range values.
func speakerIndex(event *models.Event, raw string) (int, bool) {
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 || idx >= len(event.Speakers) {
		return 0, false
	}
	return idx, true
}

// UpdateSpeakerImage replaces the image of a single speaker without
// touching the rest of the event.
func UpdateSpeakerImage(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	if err := gormDB.Where("id = ?", c.Param("id")).First(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	idx, ok := speakerIndex(&event, c.Param("speakerIndex"))
	if !ok {
		helpers.RespondWithError(c, http.StatusNotFound, "Speaker not found.")
		return
	}

	imageFile, err := c.FormFile("image")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Please upload an image.")
		return
	}

	if event.Speakers[idx].Image != "" {
		if err := helpers.DeleteFile(event.Speakers[idx].Image); err != nil {
			log.Printf("error deleting old speaker image: %v", err)
		}
	}
	imagePath, err := helpers.UploadFile(c, imageFile, "speakers")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	event.Speakers[idx].Image = imagePath

	if err := gormDB.Save(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update speaker image.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, event.Speakers[idx])
}

func CreateEvent(c *gin.Context) {
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

	event := models.Event{
		ID:          uuid.New(),
		CreatedByID: user.ID,
		Status:      models.StatusDraft,
	}
	if err := parseEventForm(c, &event); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if event.Title == "" || event.Description == "" || event.Location == "" || event.Category == "" || event.Date.IsZero() {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing required fields.")
		return
	}

	if imageFile, err := c.FormFile("image"); err == nil {
		imagePath, err := helpers.UploadFile(c, imageFile, "events")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		event.Image = imagePath
	}
	if err := attachSpeakerImages(c, &event); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := gormDB.Create(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create event.")
		return
	}

	helpers.RespondWithData(c, http.StatusCreated, event)
}

func UpdateEvent(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	// Loaded by RequireEventManager.
	value, exists := c.Get("event")
	if !exists {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}
	event := value.(*models.Event)

	if err := parseEventForm(c, event); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if imageFile, err := c.FormFile("image"); err == nil {
		if event.Image != "" {
			if err := helpers.DeleteFile(event.Image); err != nil {
				log.Printf("error deleting old event image: %v", err)
			}
		}
		imagePath, err := helpers.UploadFile(c, imageFile, "events")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		event.Image = imagePath
	}
	if err := attachSpeakerImages(c, event); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := gormDB.Save(event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update event.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, event)
}

// DeleteEvent removes the event and everything that references it:
// registrations, reviews, the registration form, and volunteer assignments.
func DeleteEvent(c *gin.Context) {
	eventID := c.Param("id")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	if err := gormDB.Where("id = ?", eventID).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	err := gormDB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.Registration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.Form{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&event).Association("Volunteers").Clear(); err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event.")
		return
	}

	helpers.RespondWithMessage(c, http.StatusOK, "Event deleted successfully.")
}

type StatusUpdateRequest struct {
	Status models.EventStatus `json:"status" binding:"required"`
}

// UpdateEventStatus applies the lifecycle transition table. Entry into
// published requires at least one volunteer and a non-empty registration
// form.
func UpdateEventStatus(c *gin.Context) {
	eventID := c.Param("id")

	var req StatusUpdateRequest
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
	if err := gormDB.Preload("Volunteers").Where("id = ?", eventID).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	fieldCount := registrationFormFieldCount(gormDB, event.ID)
	if err := event.Transition(req.Status, fieldCount); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, capitalize(err.Error())+".")
		return
	}

	if err := gormDB.Save(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update event status.")
		return
	}

	// Cancellations notify approved registrants, best-effort.
	if req.Status == models.StatusCancelled {
		notifyCancellation(c, gormDB, &event)
	}

	helpers.RespondWithData(c, http.StatusOK, event)
}

func notifyCancellation(c *gin.Context, gormDB *gorm.DB, event *models.Event) {
	m := middleware.GetMailer(c)
	if m == nil {
		return
	}
	var registrations []models.Registration
	err := gormDB.Preload("User").
		Where("event_id = ? AND status IN ?", event.ID,
			[]models.RegistrationStatus{models.RegistrationPending, models.RegistrationApproved}).
		Find(&registrations).Error
	if err != nil {
		log.Printf("failed to load registrants for cancellation notice: %v", err)
		return
	}
	for _, reg := range registrations {
		if reg.User == nil || !reg.User.Preferences.EmailNotifications {
			continue
		}
		if err := m.SendCancellationNotice(reg.User.Email, event); err != nil {
			log.Printf("failed to send cancellation notice to %s: %v", reg.User.Email, err)
		}
	}
}

func registrationFormFieldCount(gormDB *gorm.DB, eventID uuid.UUID) int {
	var form models.Form
	if err := gormDB.Where("event_id = ?", eventID).First(&form).Error; err != nil {
		return 0
	}
	return len(form.Fields)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
