package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onlyplans/server/internal/helpers"
	"github.com/onlyplans/server/internal/middleware"
	"github.com/onlyplans/server/internal/models"
)

func ListUsers(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var users []models.User
	if err := gormDB.Find(&users).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error fetching users.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, users)
}

// GetUser returns a single profile. Users may only view their own; admins
// may view any.
func GetUser(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
		return
	}
	if current.Role != models.RoleAdmin && current.ID.String() != c.Param("id") {
		helpers.RespondWithError(c, http.StatusForbidden, "Not authorized to view this profile.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var user models.User
	if err := gormDB.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error fetching user profile.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, user)
}

type UpdateUserRequest struct {
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Bio         string              `json:"bio"`
	Preferences *models.Preferences `json:"preferences"`
}

func UpdateUser(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
		return
	}
	if current.Role != models.RoleAdmin && current.ID.String() != c.Param("id") {
		helpers.RespondWithError(c, http.StatusForbidden, "Not authorized to update this profile.")
		return
	}

	var req UpdateUserRequest
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
	if err := gormDB.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error updating user profile.")
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = models.NormalizeEmail(req.Email)
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Preferences != nil {
		user.Preferences = *req.Preferences
	}

	if err := gormDB.Save(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error updating user profile.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, user)
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func UpdateUserRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidRole(req.Role) {
		helpers.RespondWithError(c, http.StatusBadRequest, "Please provide a valid role.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var user models.User
	if err := gormDB.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error updating user role.")
		return
	}

	user.Role = req.Role
	if err := gormDB.Save(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error updating user role.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, user)
}

// DeleteUser removes a user along with their registrations, reviews and
// volunteer assignments.
func DeleteUser(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var user models.User
	if err := gormDB.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error deleting user.")
		return
	}

	err := gormDB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Registration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM event_volunteers WHERE user_id = ?", user.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error deleting user.")
		return
	}

	helpers.RespondWithMessage(c, http.StatusOK, "User deleted successfully.")
}

func UpdateProfilePicture(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Not authorized to access this route.")
		return
	}
	if current.Role != models.RoleAdmin && current.ID.String() != c.Param("id") {
		helpers.RespondWithError(c, http.StatusForbidden, "Not authorized to update this profile picture.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var user models.User
	if err := gormDB.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error updating profile picture.")
		return
	}

	file, err := c.FormFile("profilePicture")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Please upload a file.")
		return
	}

	path, err := helpers.UploadFile(c, file, "profiles")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if user.ProfilePicture != "" {
		_ = helpers.DeleteFile(user.ProfilePicture)
	}

	user.ProfilePicture = path
	if err := gormDB.Save(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error updating profile picture.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, user)
}
