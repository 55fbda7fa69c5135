package controllers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/apperr"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/config"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/logger"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/utils"
)

const (
	evidencePrefix       = "activity-media"
	profilePicturePrefix = "profile-pictures"
	uploadURLExpiry      = time.Hour
	maxFilesPerUpload    = 10
)

type UploadController struct {
	R2Client *s3.Client
	R2Config *config.R2Config
	log      *logger.Logger
}

type PresignedURLRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required"`
	MediaType   string `json:"mediaType" binding:"required,oneof=image video"`
}

type ProfilePictureRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required"`
}

// PresignedURLResponse carries the PUT target and the public URL to submit as evidence.
type PresignedURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
	Key       string `json:"key"`
	MediaType string `json:"mediaType,omitempty"`
	ExpiresIn int    `json:"expiresIn"`
}

type MultipleUploadRequest struct {
	Files []PresignedURLRequest `json:"files" binding:"required,dive"`
}

type MultipleUploadResponse struct {
	Files []PresignedURLResponse `json:"files"`
}

type UploadCompleteRequest struct {
	Key       string `json:"key" binding:"required"`
	MediaType string `json:"mediaType" binding:"required,oneof=image video"`
}

var allowedContentTypes = map[models.MediaType][]string{
	models.MediaImage: {"image/jpeg", "image/jpg", "image/png", "image/webp", "image/heic"},
	models.MediaVideo: {"video/mp4", "video/quicktime", "video/webm", "video/x-msvideo", "video/mov"},
}

var sizeLimits = map[models.MediaType]int64{
	models.MediaImage: 10 * 1024 * 1024,
	models.MediaVideo: 100 * 1024 * 1024,
}

const profilePictureLimit = 5 * 1024 * 1024

func NewUploadController(r2Config *config.R2Config, log *logger.Logger) *UploadController {
	if log == nil {
		log = logger.Nop()
	}
	r2Client := s3.New(s3.Options{
		BaseEndpoint: aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2Config.AccountID)),
		Credentials: credentials.NewStaticCredentialsProvider(
			r2Config.AccessKeyID,
			r2Config.SecretAccessKey,
			"",
		),
		Region: r2Config.Region,
	})

	return &UploadController{
		R2Client: r2Client,
		R2Config: r2Config,
		log:      log.With("controller", "UploadController"),
	}
}

func (uc *UploadController) GetPresignedURL(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		respondError(c, apperr.Unauthorized("User not found in context"))
		return
	}
	var req PresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := uc.presignEvidence(c.Request.Context(), user.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    resp,
		Message: "Presigned URL generated successfully",
	})
}

func (uc *UploadController) GetMultiplePresignedURLs(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		respondError(c, apperr.Unauthorized("User not found in context"))
		return
	}
	var req MultipleUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Files) > maxFilesPerUpload {
		respondError(c, apperr.Validation("maximum %d files allowed per upload", maxFilesPerUpload))
		return
	}

	responses := make([]PresignedURLResponse, 0, len(req.Files))
	for _, fileReq := range req.Files {
		resp, err := uc.presignEvidence(c.Request.Context(), user.UserID, fileReq)
		if err != nil {
			respondError(c, err)
			return
		}
		responses = append(responses, *resp)
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    MultipleUploadResponse{Files: responses},
		Message: "Multiple presigned URLs generated successfully",
	})
}

func (uc *UploadController) GetProfilePictureURL(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		respondError(c, apperr.Unauthorized("User not found in context"))
		return
	}
	var req ProfilePictureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !isValidFileType(req.ContentType, models.MediaImage) || req.FileSize <= 0 || req.FileSize > profilePictureLimit {
		respondError(c, apperr.Validation("invalid profile picture type or size"))
		return
	}

	key := generateProfilePictureKey(user.UserID, req.FileName, time.Now())
	presignedURL, err := uc.createPresignedURL(c.Request.Context(), key, req.ContentType)
	if err != nil {
		uc.log.Error("presign profile picture failed", "key", key, "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: PresignedURLResponse{
			UploadURL: presignedURL,
			FileURL:   uc.publicURL(key),
			Key:       key,
			ExpiresIn: int(uploadURLExpiry.Seconds()),
		},
		Message: "Profile picture upload URL generated successfully",
	})
}

func (uc *UploadController) ConfirmUpload(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		respondError(c, apperr.Unauthorized("User not found in context"))
		return
	}
	var req UploadCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !verifyFileOwnership(req.Key, user.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Access denied", "code": "forbidden"})
		return
	}

	info, err := uc.getFileInfo(c.Request.Context(), req.Key)
	if err != nil {
		respondError(c, apperr.NotFound("file %s not found in storage", req.Key))
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"key":        req.Key,
			"fileUrl":    uc.publicURL(req.Key),
			"fileSize":   info.ContentLength,
			"mediaType":  req.MediaType,
			"uploadedBy": user.UserID,
		},
		Message: "Upload confirmed successfully",
	})
}

func (uc *UploadController) DeleteFile(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		respondError(c, apperr.Unauthorized("User not found in context"))
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		respondError(c, apperr.Validation("file key is required"))
		return
	}
	if !verifyFileOwnership(key, user.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Access denied", "code": "forbidden"})
		return
	}

	if err := uc.deleteFile(c.Request.Context(), key); err != nil {
		uc.log.Error("delete object failed", "key", key, "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "File deleted successfully",
	})
}

func (uc *UploadController) presignEvidence(ctx context.Context, uid string, req PresignedURLRequest) (*PresignedURLResponse, error) {
	mediaType := models.MediaType(req.MediaType)
	if !isValidFileType(req.ContentType, mediaType) {
		return nil, apperr.Validation("invalid file type for %s", req.FileName)
	}
	if !isValidFileSize(req.FileSize, mediaType) {
		return nil, apperr.Validation("file size exceeds limit for %s", req.FileName)
	}

	key := generateFileKey(uid, req.FileName, mediaType, time.Now())
	presignedURL, err := uc.createPresignedURL(ctx, key, req.ContentType)
	if err != nil {
		uc.log.Error("presign upload failed", "key", key, "error", err)
		return nil, err
	}
	return &PresignedURLResponse{
		UploadURL: presignedURL,
		FileURL:   uc.publicURL(key),
		Key:       key,
		MediaType: req.MediaType,
		ExpiresIn: int(uploadURLExpiry.Seconds()),
	}, nil
}

func (uc *UploadController) publicURL(key string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(uc.R2Config.PublicURL, "/"), key)
}

func (uc *UploadController) createPresignedURL(ctx context.Context, key, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(uc.R2Config.BucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}

	presigner := s3.NewPresignClient(uc.R2Client)
	req, err := presigner.PresignPutObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLExpiry
	})
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return req.URL, nil
}

func (uc *UploadController) getFileInfo(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	return uc.R2Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(uc.R2Config.BucketName),
		Key:    aws.String(key),
	})
}

func (uc *UploadController) deleteFile(ctx context.Context, key string) error {
	_, err := uc.R2Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(uc.R2Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func isValidFileType(contentType string, mediaType models.MediaType) bool {
	for _, valid := range allowedContentTypes[mediaType] {
		if strings.EqualFold(contentType, valid) {
			return true
		}
	}
	return false
}

func isValidFileSize(fileSize int64, mediaType models.MediaType) bool {
	limit, ok := sizeLimits[mediaType]
	return ok && fileSize > 0 && fileSize <= limit
}

// generateFileKey lays keys out as activity-media/{image|video}/{uid}/{ts}_{uuid}{ext}.
func generateFileKey(uid, fileName string, mediaType models.MediaType, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s/%s/%s/%d_%s%s", evidencePrefix, mediaType, uid, now.Unix(), uuid.NewString(), ext)
}

func generateProfilePictureKey(uid, fileName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s/%s/%d_%s%s", profilePicturePrefix, uid, now.Unix(), uuid.NewString(), ext)
}

func verifyFileOwnership(key, uid string) bool {
	if uid == "" || strings.Contains(key, "..") {
		return false
	}
	parts := strings.Split(key, "/")
	switch {
	case len(parts) == 4 && parts[0] == evidencePrefix:
		return parts[2] == uid
	case len(parts) == 3 && parts[0] == profilePicturePrefix:
		return parts[1] == uid
	default:
		return false
	}
}
