package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/controllers"
)

func SetupChatRoutes(public *gin.RouterGroup, chatController *controllers.ChatController) {
	public.POST("/chat", chatController.Reply)
}
