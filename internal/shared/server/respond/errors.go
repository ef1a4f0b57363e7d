package respond

import (
	"github.com/gin-gonic/gin"

	"latex-resume-backend/internal/shared/apperr"
	"latex-resume-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if s, ok := details.(string); ok && s != "" {
		fields["details"] = s
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// FromError classifies err and writes it as a standardized error response.
func FromError(c *gin.Context, err error) {
	e := apperr.Classify(err)
	var details interface{}
	if e.Details != "" {
		details = e.Details
	}
	Error(c, e.Kind.Status(), e.Code, e.Message, details)
}
