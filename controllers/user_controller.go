package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/apperr"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/services"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/utils"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

// CreateProfile registers the caller's profile. The picture is a URL from a prior presigned upload.
func (uc *UserController) CreateProfile(c *gin.Context) {
	currentUser := utils.GetUser(c)
	if currentUser == nil {
		respondError(c, apperr.Unauthorized("User not found in context"))
		return
	}

	var input services.CreateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	input.UID = currentUser.UserID

	user, err := uc.Users.CreateProfile(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data:    user,
		Message: "Profile created successfully",
	})
}

func (uc *UserController) GetUserProfile(c *gin.Context) {
	currentUser := utils.GetUser(c)
	if currentUser == nil {
		respondError(c, apperr.Unauthorized("User not found in context"))
		return
	}

	profile, err := uc.Users.GetProfile(c.Request.Context(), currentUser.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: profile})
}
