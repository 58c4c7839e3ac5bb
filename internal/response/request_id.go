package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key for the request ID.
const ContextKeyRequestID = "request_id"

const maxRequestIDLen = 64

// RequestIDMiddleware tags every request with an ID, reusing a well-formed
// X-Request-ID from the client (e.g. the terminal host retrying a fetch).
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if !validRequestID(reqID) {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestIDMiddleware, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// validRequestID accepts short IDs made of letters, digits, '-', '_' and '.'
// so client input never reaches logs or headers unchecked.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
