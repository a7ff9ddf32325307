package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onlyplans/server/internal/helpers"
	"github.com/onlyplans/server/internal/middleware"
	"github.com/onlyplans/server/internal/models"
)

type CreateFormRequest struct {
	EventID uuid.UUID          `json:"eventId" binding:"required"`
	Title   string             `json:"title" binding:"required"`
	Fields  []models.FormField `json:"fields" binding:"required"`
}

type UpdateFormRequest struct {
	Title  string             `json:"title"`
	Fields []models.FormField `json:"fields"`
}

func validateFields(fields []models.FormField) error {
	for _, field := range fields {
		if field.Label == "" {
			return fmt.Errorf("every form field needs a label")
		}
		if !models.ValidFieldType(field.Type) {
			return fmt.Errorf("invalid field type %q", field.Type)
		}
	}
	return nil
}

// CreateForm defines an event's registration form. One form per event; the
// DB unique index backstops the existence check.
func CreateForm(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
		return
	}

	var req CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	if err := validateFields(req.Fields); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, capitalize(err.Error())+".")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	if err := gormDB.Preload("Volunteers").Where("id = ?", req.EventID).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	if user.Role == models.RoleVolunteer && !event.HasVolunteer(user.ID) {
		helpers.RespondWithError(c, http.StatusForbidden, "You are not authorized to create forms for this event.")
		return
	}

	var existing models.Form
	if result := gormDB.Where("event_id = ?", req.EventID).First(&existing); result.Error == nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "A form already exists for this event.")
		return
	}

	form := models.Form{
		ID:          uuid.New(),
		EventID:     req.EventID,
		Title:       req.Title,
		Fields:      req.Fields,
		CreatedByID: user.ID,
	}
	if err := gormDB.Create(&form).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create form.")
		return
	}

	helpers.RespondWithData(c, http.StatusCreated, form)
}

func GetFormByEvent(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	if err := gormDB.Where("id = ?", c.Param("eventId")).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	var form models.Form
	if err := gormDB.Where("event_id = ?", event.ID).First(&form).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Form not found for this event.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving form.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, form)
}

// canManageForm: admins always; volunteers only for forms they created.
func canManageForm(user *models.User, form *models.Form) bool {
	if user.Role == models.RoleAdmin {
		return true
	}
	return user.Role == models.RoleVolunteer && form.CreatedByID == user.ID
}

func UpdateForm(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
		return
	}

	var req UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	if req.Fields != nil {
		if err := validateFields(req.Fields); err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, capitalize(err.Error())+".")
			return
		}
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var form models.Form
	if err := gormDB.Where("id = ?", c.Param("id")).First(&form).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Form not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving form.")
		return
	}

	if !canManageForm(user, &form) {
		helpers.RespondWithError(c, http.StatusForbidden, "You are not authorized to update this form.")
		return
	}

	if req.Title != "" {
		form.Title = req.Title
	}
	if req.Fields != nil {
		form.Fields = req.Fields
	}
	form.LastUpdatedBy = &user.ID

	if err := gormDB.Save(&form).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update form.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, form)
}

func DeleteForm(c *gin.Context) {
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

	var form models.Form
	if err := gormDB.Where("id = ?", c.Param("id")).First(&form).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Form not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving form.")
		return
	}

	if !canManageForm(user, &form) {
		helpers.RespondWithError(c, http.StatusForbidden, "You are not authorized to delete this form.")
		return
	}

	if err := gormDB.Delete(&form).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete form.")
		return
	}

	helpers.RespondWithMessage(c, http.StatusOK, "Form deleted successfully.")
}

// UpdateRegistrationForm is the event-scoped editing path
// (PUT /api/events/:id/registration-form); it upserts the event's form row.
func UpdateRegistrationForm(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
		return
	}

	var req UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	if err := validateFields(req.Fields); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, capitalize(err.Error())+".")
		return
	}

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

	if user.Role != models.RoleAdmin && !event.HasVolunteer(user.ID) {
		helpers.RespondWithError(c, http.StatusForbidden, "Not authorized to update registration form.")
		return
	}

	var form models.Form
	err := gormDB.Where("event_id = ?", event.ID).First(&form).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		form = models.Form{
			ID:          uuid.New(),
			EventID:     event.ID,
			Title:       event.Title + " Registration",
			Fields:      req.Fields,
			CreatedByID: user.ID,
		}
		if err := gormDB.Create(&form).Error; err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error updating registration form.")
			return
		}
	case err != nil:
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error updating registration form.")
		return
	default:
		form.Fields = req.Fields
		form.LastUpdatedBy = &user.ID
		if req.Title != "" {
			form.Title = req.Title
		}
		if err := gormDB.Save(&form).Error; err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error updating registration form.")
			return
		}
	}

	helpers.RespondWithData(c, http.StatusOK, gin.H{
		"event": event,
		"form":  form,
	})
}

// ExportFormResponses mirrors the event export but is addressed by form id.
func ExportFormResponses(c *gin.Context) {
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

	var form models.Form
	if err := gormDB.Where("id = ?", c.Param("id")).First(&form).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Form not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving form.")
		return
	}

	var event models.Event
	if err := gormDB.Preload("Volunteers").Where("id = ?", form.EventID).First(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	if user.Role == models.RoleVolunteer && !event.HasVolunteer(user.ID) {
		helpers.RespondWithError(c, http.StatusForbidden, "You are not authorized to export responses for this event.")
		return
	}

	var registrations []models.Registration
	if err := gormDB.Preload("User").Where("event_id = ?", event.ID).Order("submitted_at ASC").Find(&registrations).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error exporting responses.")
		return
	}
	if len(registrations) == 0 {
		helpers.RespondWithError(c, http.StatusNotFound, "No registrations found for this event.")
		return
	}

	header, rows := helpers.BuildRegistrationRows(form.Fields, registrations)

	var buf bytes.Buffer
	if err := helpers.WriteCSV(&buf, header, rows); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error exporting responses.")
		return
	}

	filename := fmt.Sprintf("%s_responses.csv", strings.ReplaceAll(event.Title, " ", "_"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
