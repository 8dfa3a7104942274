package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const MsgUnauthorized = "unauthorized"

// Result is the envelope every endpoint responds with.
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func OK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Result{Success: true, Message: message, Data: data})
}

func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Result{Success: false, Message: message})
}

// Unexpected reports an unclassified failure with a generic message and the raw
// error text.
func Unexpected(c *gin.Context, message string, err error) {
	result := Result{Success: false, Message: message}
	if err != nil {
		result.Error = err.Error()
	}
	c.JSON(http.StatusInternalServerError, result)
}

func Unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Result{Success: false, Message: MsgUnauthorized})
}
