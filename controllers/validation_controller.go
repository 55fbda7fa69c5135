package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/services"
)

type ValidationController struct {
	Users *services.UserService
}

func NewValidationController(users *services.UserService) *ValidationController {
	return &ValidationController{Users: users}
}

func (vc *ValidationController) ValidateEmail(c *gin.Context) {
	exists, err := vc.Users.EmailExists(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}
