package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onlyplans/server/internal/mailer"
)

func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	}
}

func MailerMiddleware(m *mailer.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("mailer", m)
		c.Next()
	}
}

func GetMailer(c *gin.Context) *mailer.Mailer {
	value, exists := c.Get("mailer")
	if !exists {
		return nil
	}
	m, ok := value.(*mailer.Mailer)
	if !ok {
		return nil
	}
	return m
}
