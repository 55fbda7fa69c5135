package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/controllers"
)

func SetupActivityRoutes(protected *gin.RouterGroup, activityController *controllers.ActivityController) {
	activity := protected.Group("/activity")
	{
		activity.POST("/create-log", activityController.CreateLog)
		activity.GET("/logs", activityController.GetLogs)
	}
}
