package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/controllers"
)

func SetupUploadRoutes(r *gin.RouterGroup, uploadController *controllers.UploadController) {
	upload := r.Group("/upload")
	{
		// Evidence upload URL generation
		upload.POST("/presigned-url", uploadController.GetPresignedURL)
		upload.POST("/multiple-presigned-urls", uploadController.GetMultiplePresignedURLs)
		upload.POST("/profile-picture", uploadController.GetProfilePictureURL)

		upload.POST("/confirm", uploadController.ConfirmUpload)
		upload.DELETE("/file/*key", uploadController.DeleteFile)
	}
}
