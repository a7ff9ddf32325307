package helpers

import (
	"github.com/gin-gonic/gin"
)

// Every response uses the {success, data|message} envelope.

func RespondWithError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"message": message,
	})
}

// RespondWithValidationErrors returns every violated field together so the
// caller can surface all problems at once.
func RespondWithValidationErrors(c *gin.Context, statusCode int, message string, errs []string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"message": message,
		"errors":  errs,
	})
}

func RespondWithData(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func RespondWithMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"message": message,
	})
}
