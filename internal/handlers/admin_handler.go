package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onlyplans/server/internal/helpers"
	"github.com/onlyplans/server/internal/models"
)

type dailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type categoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// GetStatistics builds the admin dashboard payload: totals, the five most
// recently created events, seven-day growth series and the category split.
func GetStatistics(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var totalUsers, totalEvents, totalRegistrations int64
	if err := gormDB.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving statistics.")
		return
	}
	if err := gormDB.Model(&models.Event{}).Count(&totalEvents).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving statistics.")
		return
	}
	if err := gormDB.Model(&models.Registration{}).Count(&totalRegistrations).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving statistics.")
		return
	}

	var recentEvents []models.Event
	if err := gormDB.Preload("CreatedBy").Order("created_at DESC").Limit(5).Find(&recentEvents).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving statistics.")
		return
	}

	since := time.Now().AddDate(0, 0, -7)

	userGrowth, err := dailyCounts(gormDB, "users", since)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving statistics.")
		return
	}

	registrationTrends, err := dailyCounts(gormDB, "registrations", since)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving statistics.")
		return
	}

	var eventCategories []categoryCount
	err = gormDB.Model(&models.Event{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&eventCategories).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving statistics.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, gin.H{
		"totalUsers":         totalUsers,
		"totalEvents":        totalEvents,
		"totalRegistrations": totalRegistrations,
		"recentEvents":       recentEvents,
		"userGrowth":         userGrowth,
		"eventCategories":    eventCategories,
		"registrationTrends": registrationTrends,
	})
}

func dailyCounts(gormDB *gorm.DB, table string, since time.Time) ([]dailyCount, error) {
	var counts []dailyCount
	err := gormDB.Table(table).
		Select("to_char(created_at, 'YYYY-MM-DD') AS date, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("to_char(created_at, 'YYYY-MM-DD')").
		Order("date ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []dailyCount{}
	}
	return counts, nil
}
