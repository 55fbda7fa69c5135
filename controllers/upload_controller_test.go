package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/config"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/utils"
)

func testUploadController() *UploadController {
	return NewUploadController(&config.R2Config{
		AccountID:       "acct",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		BucketName:      "greenid-evidence",
		PublicURL:       "https://media.example.com/",
		Region:          "auto",
	}, nil)
}

func uploadRouter(uc *UploadController, uid string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid != "" {
			c.Set(string(utils.UserContextKey), &utils.UserClaims{UserID: uid, Role: utils.RoleUser})
		}
		c.Next()
	})
	r.POST("/presigned-url", uc.GetPresignedURL)
	r.POST("/multiple-presigned-urls", uc.GetMultiplePresignedURLs)
	r.POST("/profile-picture", uc.GetProfilePictureURL)
	r.DELETE("/file/*key", uc.DeleteFile)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIsValidFileType(t *testing.T) {
	assert.True(t, isValidFileType("image/jpeg", models.MediaImage))
	assert.True(t, isValidFileType("IMAGE/PNG", models.MediaImage))
	assert.True(t, isValidFileType("video/mp4", models.MediaVideo))
	assert.False(t, isValidFileType("video/mp4", models.MediaImage))
	assert.False(t, isValidFileType("application/pdf", models.MediaImage))
	assert.False(t, isValidFileType("image/jpeg", "audio"))
}

func TestIsValidFileSize(t *testing.T) {
	assert.True(t, isValidFileSize(1024, models.MediaImage))
	assert.True(t, isValidFileSize(10*1024*1024, models.MediaImage))
	assert.False(t, isValidFileSize(10*1024*1024+1, models.MediaImage))
	assert.True(t, isValidFileSize(50*1024*1024, models.MediaVideo))
	assert.False(t, isValidFileSize(0, models.MediaVideo))
	assert.False(t, isValidFileSize(1, "audio"))
}

func TestGenerateFileKey(t *testing.T) {
	now := time.Unix(1700000000, 0)
	key := generateFileKey("uid-asha", "Sapling.MP4", models.MediaVideo, now)

	parts := strings.Split(key, "/")
	require.Len(t, parts, 4)
	assert.Equal(t, "activity-media", parts[0])
	assert.Equal(t, "video", parts[1])
	assert.Equal(t, "uid-asha", parts[2])
	assert.True(t, strings.HasPrefix(parts[3], "1700000000_"))
	assert.True(t, strings.HasSuffix(parts[3], ".mp4"))
	assert.NotEqual(t, key, generateFileKey("uid-asha", "Sapling.MP4", models.MediaVideo, now))
}

func TestVerifyFileOwnership(t *testing.T) {
	now := time.Now()
	assert.True(t, verifyFileOwnership(generateFileKey("uid-asha", "a.jpg", models.MediaImage, now), "uid-asha"))
	assert.True(t, verifyFileOwnership(generateProfilePictureKey("uid-asha", "me.png", now), "uid-asha"))
	assert.False(t, verifyFileOwnership(generateFileKey("uid-asha", "a.jpg", models.MediaImage, now), "uid-ravi"))
	assert.False(t, verifyFileOwnership("activity-media/image/uid-asha/../uid-ravi/x.jpg", "uid-asha"))
	assert.False(t, verifyFileOwnership("uploads/image/uid-asha/x.jpg", "uid-asha"))
	assert.False(t, verifyFileOwnership("activity-media/image/uid-asha/x.jpg", ""))
}

func TestGetPresignedURL(t *testing.T) {
	r := uploadRouter(testUploadController(), "uid-asha")

	w := postJSON(t, r, "/presigned-url", PresignedURLRequest{
		FileName:    "cleanup.jpg",
		ContentType: "image/jpeg",
		FileSize:    2048,
		MediaType:   "image",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool                 `json:"success"`
		Data    PresignedURLResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.Data.Key, "activity-media/image/uid-asha/"))
	assert.Equal(t, "https://media.example.com/"+resp.Data.Key, resp.Data.FileURL)
	assert.Contains(t, resp.Data.UploadURL, "X-Amz-Signature=")
	assert.Equal(t, 3600, resp.Data.ExpiresIn)
}

func TestGetPresignedURLRejectsBadFiles(t *testing.T) {
	r := uploadRouter(testUploadController(), "uid-asha")

	tests := []struct {
		name string
		req  interface{}
	}{
		{"wrong content type", PresignedURLRequest{FileName: "a.pdf", ContentType: "application/pdf", FileSize: 10, MediaType: "image"}},
		{"too large", PresignedURLRequest{FileName: "a.mp4", ContentType: "video/mp4", FileSize: 200 * 1024 * 1024, MediaType: "video"}},
		{"unknown media type", map[string]interface{}{"fileName": "a.mp3", "contentType": "audio/mpeg", "fileSize": 10, "mediaType": "audio"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, r, "/presigned-url", tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetMultiplePresignedURLs(t *testing.T) {
	r := uploadRouter(testUploadController(), "uid-asha")

	files := []PresignedURLRequest{
		{FileName: "before.jpg", ContentType: "image/jpeg", FileSize: 100, MediaType: "image"},
		{FileName: "after.png", ContentType: "image/png", FileSize: 100, MediaType: "image"},
	}
	w := postJSON(t, r, "/multiple-presigned-urls", MultipleUploadRequest{Files: files})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data MultipleUploadResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Files, 2)
	assert.NotEqual(t, resp.Data.Files[0].Key, resp.Data.Files[1].Key)

	tooMany := make([]PresignedURLRequest, maxFilesPerUpload+1)
	for i := range tooMany {
		tooMany[i] = files[0]
	}
	w = postJSON(t, r, "/multiple-presigned-urls", MultipleUploadRequest{Files: tooMany})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProfilePictureURL(t *testing.T) {
	r := uploadRouter(testUploadController(), "uid-asha")

	w := postJSON(t, r, "/profile-picture", ProfilePictureRequest{FileName: "me.webp", ContentType: "image/webp", FileSize: 1024})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "profile-pictures/uid-asha/")

	w = postJSON(t, r, "/profile-picture", ProfilePictureRequest{FileName: "me.webp", ContentType: "image/webp", FileSize: 6 * 1024 * 1024})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRequiresUser(t *testing.T) {
	r := uploadRouter(testUploadController(), "")
	w := postJSON(t, r, "/presigned-url", PresignedURLRequest{FileName: "a.jpg", ContentType: "image/jpeg", FileSize: 1, MediaType: "image"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteFileChecksOwnership(t *testing.T) {
	r := uploadRouter(testUploadController(), "uid-ravi")
	req := httptest.NewRequest(http.MethodDelete, "/file/activity-media/image/uid-asha/1700000000_x.jpg", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
