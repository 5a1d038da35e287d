package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Message sends a 200 response with a plain message body
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Data sends a 200 response with the records wrapped in a "data" field
func Data(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// JSON sends a 200 response with an arbitrary body
func JSON(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// Error sends an error response with a detail message
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"detail": message})
}

// BadRequest sends a 400 error response
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 error response with the bearer challenge
func Unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 error response
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound sends a 404 error response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError sends a 500 error response. Storage and other internal
// failures all map here; the detail string must never carry internal
// state.
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
