package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/controllers"
)

func SetupValidationRoutes(public *gin.RouterGroup, validationController *controllers.ValidationController) {
	validation := public.Group("/validation")
	{
		validation.GET("/email/:email", validationController.ValidateEmail)
	}
}
