package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/apperr"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/services"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/utils"
)

type ActivityController struct {
	Activities *services.ActivityService
}

func NewActivityController(activities *services.ActivityService) *ActivityController {
	return &ActivityController{Activities: activities}
}

// CreateLog stores a Pending record and returns before verification runs.
func (ac *ActivityController) CreateLog(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		respondError(c, apperr.Unauthorized("User not found in context"))
		return
	}

	var input services.SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	input.OwnerID = user.UserID

	rec, err := ac.Activities.Submit(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data:    rec,
		Message: "Activity submitted for verification",
	})
}

func (ac *ActivityController) GetLogs(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		respondError(c, apperr.Unauthorized("User not found in context"))
		return
	}

	logs, err := ac.Activities.ListOwn(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    logs,
		Meta:    gin.H{"count": len(logs)},
	})
}

func (ac *ActivityController) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    ac.Activities.Categories(),
	})
}
