package response

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/helloSanmi/e-vote/pkg/apperror"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	str, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors, keep the cause away from the client
	if code == http.StatusInternalServerError {
		var appErr *apperror.AppError
		message := "internal server error"
		if errors.As(err, &appErr) && appErr.Message != "" {
			message = appErr.Message
			log.Printf("[Internal Error] %s %s: %s: %v", c.Request.Method, c.FullPath(), appErr.Message, appErr.Err)
		} else {
			log.Printf("[Internal Error] %s %s: %v", c.Request.Method, c.FullPath(), err)
		}
		c.JSON(code, gin.H{"error": message})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

// Message writes the {"message": ...} envelope used by mutation endpoints.
func Message(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"message": message})
}
