package mockapi

import (
	"time"

	"github.com/gin-gonic/gin"
)

type apiResponse struct {
	Success   bool         `json:"success"`
	Data      any          `json:"data"`
	Error     *errorDetail `json:"error,omitempty"`
	Message   string       `json:"message"`
	Timestamp string       `json:"timestamp"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, apiResponse{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, apiResponse{
		Success: false,
		Error: &errorDetail{
			Code:    code,
			Message: message,
		},
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
