package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/instituto-admin-api/pkg/errors"
)

// Ack is the acknowledgement shape used for deletions and failures.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON sends data as the bare response body.
func JSON(c *gin.Context, status int, data interface{}) {
	noStore(c)
	c.JSON(status, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// OK responds with {success:true, message}.
func OK(c *gin.Context, message string) {
	JSON(c, http.StatusOK, Ack{Success: true, Message: message})
}

// Error converts err to {success:false, message, code}. Internal errors
// always carry the generic message; the cause stays in the logs.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Err != nil {
		_ = c.Error(appErr)
	}
	message := appErr.Message
	if appErr.Status >= http.StatusInternalServerError {
		message = appErrors.ErrInternal.Message
	}
	noStore(c)
	c.JSON(appErr.Status, Ack{Success: false, Message: message, Code: appErr.Code})
}

// Abort is Error followed by c.Abort, for middleware.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
