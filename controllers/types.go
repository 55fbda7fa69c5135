package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/apperr"
)

type StandardResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Message string      `json:"message,omitempty"`
}

// respondError writes the failure envelope for err. Server-side failures keep their
// detail in the request log only.
func respondError(c *gin.Context, err error) {
	status, code := apperr.StatusOf(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"success": false, "error": msg, "code": code})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": apperr.CodeValidation})
}
